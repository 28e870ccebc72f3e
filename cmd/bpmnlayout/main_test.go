package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	bperrors "github.com/matzehuels/bpmnlayout/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"interrupted", fmt.Errorf("layout: %w", context.Canceled), exitInterrupted},
		{"bad scope", bperrors.New(bperrors.ErrCodeInvalidScope, "Task_1 is not a container"), exitInvalid},
		{"layout failed", bperrors.Wrap(bperrors.ErrCodeLayoutFailed, errors.New("dot"), "layout"), exitFailure},
		{"plain", errors.New("disk full"), exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
