package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "unit not found",
			},
			expected: "NOT_FOUND: unit not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("connection reset"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConstructorsStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"invalid input", InvalidInput("bad"), CodeInvalidInput, http.StatusBadRequest},
		{"validation", Validation("bad", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"not found", NotFoundWithID("Unit", "u-1"), CodeNotFound, http.StatusNotFound},
		{"conflict", Conflict("locked"), CodeConflict, http.StatusConflict},
		{"match unavailable", MatchUnavailable("u-1"), CodeMatchUnavailable, http.StatusConflict},
		{"stop sale", StopSale("Gold", "ceiling"), CodeStopSale, http.StatusConflict},
		{"unavailable", Unavailable("capacity store", nil), CodeUnavailable, http.StatusServiceUnavailable},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.status)
			}
		})
	}
}

func TestMatchUnavailableCarriesUnit(t *testing.T) {
	err := MatchUnavailable("unit-42")
	if err.Details["unit_id"] != "unit-42" {
		t.Errorf("expected unit_id detail, got %v", err.Details)
	}
}

func TestAsAppErrorUnwrapsChains(t *testing.T) {
	inner := StopSale("Platinum", "global_red")
	wrapped := fmt.Errorf("commit sale: %w", inner)

	got := AsAppError(wrapped)
	if got != inner {
		t.Fatalf("AsAppError should find wrapped AppError, got %v", got)
	}
	if !HasCode(wrapped, CodeStopSale) {
		t.Error("HasCode should see through wrapping")
	}
	if HasCode(wrapped, CodeConflict) {
		t.Error("HasCode matched the wrong code")
	}
}

func TestAsAppErrorFallsBackToInternal(t *testing.T) {
	plain := errors.New("socket closed")
	got := AsAppError(plain)
	if got.Code != CodeInternal {
		t.Errorf("expected internal code, got %s", got.Code)
	}
	if !errors.Is(got, plain) {
		t.Error("internal fallback should wrap the original error")
	}
}
