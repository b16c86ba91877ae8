package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	errs "github.com/matzehuels/stagger/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"canceled", fmt.Errorf("layout: %w", context.Canceled), 130},
		{"invalid config", errs.New(errs.ErrCodeInvalidConfig, "lanes must be positive"), 2},
		{"missing file", fmt.Errorf("load items: %w", errs.New(errs.ErrCodeFileNotFound, "items.json")), 2},
		{"measure failure", errs.Wrap(errs.ErrCodeMeasure, errors.New("boom"), "measure position 3"), 1},
		{"plain", errors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
