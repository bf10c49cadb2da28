package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", &NotFoundError{Entity: "appointment", ID: "a"}, "not_found"},
		{"transition", &InvalidTransitionError{ID: "a", Op: "approve", Status: "rejected"}, "invalid_transition"},
		{"conflict", &ConflictError{AppointmentID: "a"}, "conflict"},
		{"closed", &AlreadyClosedError{OccupancyID: "o"}, "already_closed"},
		{"not checked in", &NotCheckedInError{AppointmentID: "a"}, "not_checked_in"},
		{"validation", &ValidationError{Field: "rating", Message: "must be 1-5"}, "validation"},
		{"wrapped", fmt.Errorf("checking in: %w", &ConflictError{AppointmentID: "a"}), "conflict"},
		{"plain", errors.New("boom"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	e := &ValidationError{Field: "rating", Message: "must be 1-5"}
	if e.Error() != "rating: must be 1-5" {
		t.Errorf("Error() = %q", e.Error())
	}

	e = &ValidationError{Message: "invalid JSON body"}
	if e.Error() != "invalid JSON body" {
		t.Errorf("Error() = %q", e.Error())
	}
}

func TestValidate(t *testing.T) {
	type input struct {
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"required,email"`
		Stars int    `json:"stars" validate:"min=1,max=5"`
		Day   string `json:"day" validate:"omitempty,datetime=2006-01-02"`
	}

	tests := []struct {
		name      string
		in        input
		wantField string
	}{
		{"valid", input{Name: "Ana", Email: "ana@example.com", Stars: 3, Day: "2025-06-01"}, ""},
		{"missing name", input{Email: "ana@example.com", Stars: 3}, "name"},
		{"bad email", input{Name: "Ana", Email: "nope", Stars: 3}, "email"},
		{"stars too high", input{Name: "Ana", Email: "ana@example.com", Stars: 6}, "stars"},
		{"bad date", input{Name: "Ana", Email: "ana@example.com", Stars: 1, Day: "06/01/2025"}, "day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}
