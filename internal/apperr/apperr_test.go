package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: NotFound("gone"), want: http.StatusNotFound},
		{name: "access denied", err: AccessDenied("no"), want: http.StatusForbidden},
		{name: "invalid input", err: InvalidInput("bad"), want: http.StatusBadRequest},
		{name: "policy violation", err: PolicyViolation("rule"), want: http.StatusConflict},
		{name: "deprecated", err: Deprecated("old"), want: http.StatusGone},
		{name: "internal", err: Internal("boom", errors.New("db down")), want: http.StatusInternalServerError},
		{name: "plain error", err: errors.New("anything"), want: http.StatusInternalServerError},
		{name: "wrapped app error", err: fmt.Errorf("handler: %w", NotFound("gone")), want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("failed to save", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is() cannot find the wrapped cause")
	}
	if err.Error() != "failed to save: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
	if got := NotFound("x").Error(); got != "x" {
		t.Errorf("Error() without cause = %q, want message only", got)
	}
}
