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
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "doctor not found"},
			expected: "NOT_FOUND: doctor not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeSlotFetch,
				Message: "slots unavailable",
				Err:     errors.New("connection refused"),
			},
			expected: "SLOT_FETCH_ERROR: slots unavailable (caused by: connection refused)",
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

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("decode failed")
	appErr := Authentication("invalid token", cause)

	if !errors.Is(appErr, cause) {
		t.Errorf("errors.Is should see the wrapped cause")
	}
}

func TestAppError_StatusCodeDefaultsToInternal(t *testing.T) {
	err := &AppError{Code: CodeInternal}
	if err.StatusCode() != http.StatusInternalServerError {
		t.Errorf("StatusCode() = %d, want %d", err.StatusCode(), http.StatusInternalServerError)
	}
}

func TestTaxonomyConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
		title  string
	}{
		{"authentication", Authentication("bad password", nil), CodeAuthentication, http.StatusUnauthorized, TitleLoginFailed},
		{"slot fetch", SlotFetch("no slots field", nil), CodeSlotFetch, http.StatusBadGateway, TitleGeneric},
		{"booking", Booking("slot taken", http.StatusConflict), CodeBooking, http.StatusUnprocessableEntity, TitleBookingFailed},
		{"booking parse", BookingResponseParse(errors.New("eof")), CodeBookingResponseParse, http.StatusBadGateway, TitleBookingFailed},
		{"directory", Directory("Failed to delete doctor", http.StatusBadGateway, nil), CodeDirectory, http.StatusBadGateway, TitleGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.status)
			}
			if tt.err.Toast().Title != tt.title {
				t.Errorf("title = %q, want %q", tt.err.Toast().Title, tt.title)
			}
		})
	}
}

func TestBooking_KeepsRawBodyAndUpstreamStatus(t *testing.T) {
	err := Booking("plain text rejection", http.StatusConflict)

	if err.Message != "plain text rejection" {
		t.Errorf("expected raw body as message, got %q", err.Message)
	}
	if err.Details["upstream_status"] != http.StatusConflict {
		t.Errorf("expected upstream status 409, got %v", err.Details["upstream_status"])
	}
}

func TestToast_FallsBackToGenericTitle(t *testing.T) {
	toast := InvalidInput("date is required").Toast()

	if toast.Title != TitleGeneric {
		t.Errorf("expected generic title, got %q", toast.Title)
	}
	if toast.Description != "date is required" {
		t.Errorf("expected description to carry the message, got %q", toast.Description)
	}
}

func TestHasCode(t *testing.T) {
	wrapped := fmt.Errorf("reserve: %w", Booking("taken", http.StatusConflict))

	if !HasCode(wrapped, CodeBooking) {
		t.Error("expected HasCode to find BOOKING_ERROR through wrapping")
	}
	if HasCode(wrapped, CodeAuthentication) {
		t.Error("did not expect AUTHENTICATION_ERROR")
	}
	if HasCode(errors.New("plain"), CodeBooking) {
		t.Error("plain errors carry no code")
	}
}

func TestAsAppError(t *testing.T) {
	t.Run("app error is returned as is", func(t *testing.T) {
		original := Conflict("exists")
		if AsAppError(original) != original {
			t.Error("expected the same AppError back")
		}
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		got := AsAppError(errors.New("boom"))
		if got.Code != CodeInternal {
			t.Errorf("expected %s, got %s", CodeInternal, got.Code)
		}
	})
}
