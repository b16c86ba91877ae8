package errors

import (
	"testing"
)

func TestValidateLaneCount(t *testing.T) {
	tests := []struct {
		name    string
		input   int
		wantErr bool
	}{
		{"one lane", 1, false},
		{"many lanes", 12, false},
		{"zero", 0, true},
		{"negative", -3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLaneCount(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLaneCount(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && GetCode(err) != ErrCodeInvalidConfig {
				t.Errorf("GetCode() = %v, want %v", GetCode(err), ErrCodeInvalidConfig)
			}
		})
	}
}

func TestValidateSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantErr       bool
	}{
		{"regular", 100, 40, false},
		{"empty item", 0, 0, false},
		{"negative width", -1, 10, true},
		{"negative height", 10, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSize(tt.width, tt.height)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSize(%d, %d) error = %v, wantErr %v", tt.width, tt.height, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePosition(t *testing.T) {
	tests := []struct {
		name            string
		position, count int
		wantErr         bool
	}{
		{"first", 0, 3, false},
		{"last", 2, 3, false},
		{"past end", 3, 3, true},
		{"negative", -1, 3, true},
		{"empty dataset", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePosition(tt.position, tt.count)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePosition(%d, %d) error = %v, wantErr %v", tt.position, tt.count, err, tt.wantErr)
			}
			if err != nil && GetCode(err) != ErrCodeOutOfRange {
				t.Errorf("GetCode() = %v, want %v", GetCode(err), ErrCodeOutOfRange)
			}
		})
	}
}

func TestValidateChoice(t *testing.T) {
	if err := ValidateChoice("strategy", "Grid", "staggered", "grid"); err != nil {
		t.Errorf("ValidateChoice(Grid) error = %v, want nil", err)
	}
	err := ValidateChoice("strategy", "masonry", "staggered", "grid")
	if err == nil {
		t.Fatal("ValidateChoice(masonry) error = nil, want error")
	}
	want := `invalid strategy: "masonry" (must be one of: staggered, grid)`
	if got := UserMessage(err); got != want {
		t.Errorf("UserMessage() = %q, want %q", got, want)
	}
}
