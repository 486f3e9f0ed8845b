package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   NotFound("Appointment"),
			expected: "NOT_FOUND: Appointment not found",
		},
		{
			name:     "with underlying error",
			appErr:   Internal("Failed to create appointment", errors.New("connection reset")),
			expected: "INTERNAL_ERROR: Failed to create appointment (caused by: connection reset)",
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

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFoundWithID("Doctor", "abc"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("Cannot book appointments for past dates", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("missing actor"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("not your appointment"), CodeForbidden, http.StatusForbidden},
		{"slot unavailable", TimeSlotUnavailable("Doctor is not available at 10:00-11:00 on Monday"), CodeTimeSlotUnavailable, http.StatusBadRequest},
		{"slot conflict", TimeSlotConflict("This time slot is already booked"), CodeTimeSlotConflict, http.StatusConflict},
		{"conflict", Conflict("Doctor profile already exists"), CodeConflict, http.StatusConflict},
		{"state transition", InvalidStateTransition("completed", "cancelled"), CodeInvalidStateTransition, http.StatusBadRequest},
		{"timeout", Timeout("too slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("Notification Service"), CodeUnavailable, http.StatusServiceUnavailable},
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

func TestInvalidStateTransition_Details(t *testing.T) {
	err := InvalidStateTransition("completed", "cancelled")

	if err.Details["current_status"] != "completed" {
		t.Errorf("expected current_status 'completed', got %v", err.Details["current_status"])
	}
	if err.Details["requested_status"] != "cancelled" {
		t.Errorf("expected requested_status 'cancelled', got %v", err.Details["requested_status"])
	}
}

func TestHasCode(t *testing.T) {
	wrapped := fmt.Errorf("create: %w", TimeSlotConflict("taken"))

	if !HasCode(wrapped, CodeTimeSlotConflict) {
		t.Errorf("HasCode() should see through wrapping")
	}
	if HasCode(wrapped, CodeNotFound) {
		t.Errorf("HasCode() should not match a different code")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Errorf("HasCode() should be false for non-AppError")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Forbidden("nope")
	if AsAppError(appErr) != appErr {
		t.Errorf("AsAppError() should return same AppError")
	}

	regularErr := errors.New("regular error")
	result := AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if !errors.Is(result, regularErr) {
		t.Errorf("AsAppError() should wrap the original error")
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WriteError(rec, TimeSlotConflict("This time slot is already booked")); err != nil {
		t.Fatalf("WriteError() returned %v", err)
	}

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Code != CodeTimeSlotConflict {
		t.Errorf("body code = %s, want %s", body.Code, CodeTimeSlotConflict)
	}
}
