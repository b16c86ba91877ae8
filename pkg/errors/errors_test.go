package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidConfig, "lanes: %d", 0)

	if err.Code != ErrCodeInvalidConfig {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidConfig)
	}
	if err.Message != "lanes: 0" {
		t.Errorf("Message = %v, want %v", err.Message, "lanes: 0")
	}

	expected := "INVALID_CONFIG: lanes: 0"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("view detached")
	err := Wrap(ErrCodeMeasure, cause, "measure position %d", 7)

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "MEASURE_FAILED: measure position 7: view detached"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeOutOfRange, "test"),
			code:     ErrCodeOutOfRange,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeOutOfRange, "test"),
			code:     ErrCodeMeasure,
			expected: false,
		},
		{
			name:     "outer code",
			err:      Wrap(ErrCodeInternal, New(ErrCodeMeasure, "inner"), "outer"),
			code:     ErrCodeInternal,
			expected: true,
		},
		{
			name:     "inner code",
			err:      Wrap(ErrCodeInternal, New(ErrCodeMeasure, "inner"), "outer"),
			code:     ErrCodeMeasure,
			expected: true,
		},
		{
			name:     "wrapped by fmt",
			err:      fmt.Errorf("layout: %w", OutOfRange(5, 3)),
			code:     ErrCodeOutOfRange,
			expected: true,
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeInvalidSnapshot, "test"), ErrCodeInvalidSnapshot},
		{"wrapped", fmt.Errorf("ctx: %w", New(ErrCodeNotFound, "x")), ErrCodeNotFound},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidInput, "friendly message")); got != "friendly message" {
		t.Errorf("UserMessage() = %v, want %v", got, "friendly message")
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage() = %v, want %v", got, "plain error")
	}
}

func TestOutOfRange(t *testing.T) {
	err := OutOfRange(10, 4)
	if err.Code != ErrCodeOutOfRange {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeOutOfRange)
	}
	if err.Message != "position 10 outside [0, 4)" {
		t.Errorf("Message = %q", err.Message)
	}
}
