// Package appointment provides the daycare appointment model and data access.
package appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evcraddock/pawstay/internal/apperr"
)

// DateLayout is the format of stay dates.
const DateLayout = "2006-01-02"

// Status is where an appointment is in its lifecycle.
type Status string

const (
	Pending   Status = "pending"
	Approved  Status = "approved"
	Rejected  Status = "rejected"
	Completed Status = "completed"
)

// ValidStatuses is the closed set of appointment statuses.
var ValidStatuses = []Status{Pending, Approved, Rejected, Completed}

// ParseStatus parses s case-insensitively, so "Approved" and "approved" are
// the same status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", &apperr.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", s)}
	}
	return st, nil
}

// IsValid checks if a status is recognized.
func (s Status) IsValid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == Rejected || s == Completed
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to Status) bool {
	switch from {
	case Pending:
		return to == Approved || to == Rejected
	case Approved:
		return to == Rejected || to == Completed
	default:
		return false
	}
}

// Label returns a human-readable label for the status.
func (s Status) Label() string {
	switch s {
	case Pending:
		return "Pending"
	case Approved:
		return "Approved"
	case Rejected:
		return "Rejected"
	case Completed:
		return "Completed"
	default:
		return string(s)
	}
}

// Appointment is a request to board a pet for a stay window.
type Appointment struct {
	ID           uuid.UUID `json:"id"`
	OwnerName    string    `json:"owner_name"`
	OwnerEmail   string    `json:"owner_email"`
	OwnerPhone   string    `json:"owner_phone"`
	PetName      string    `json:"pet_name"`
	PetSpecies   string    `json:"pet_species"`
	PetBreed     string    `json:"pet_breed,omitempty"`
	DropOff      string    `json:"drop_off"` // YYYY-MM-DD
	PickUp       string    `json:"pick_up"`  // YYYY-MM-DD
	Nights       int       `json:"nights"`
	Grooming     bool      `json:"grooming"`
	Walking      bool      `json:"walking"`
	HealthNotes  string    `json:"health_notes"`
	FoodNotes    string    `json:"food_notes"`
	Status       Status    `json:"status"`
	RejectedFrom *Status   `json:"rejected_from,omitempty"`
	DecisionNote string    `json:"decision_note,omitempty"`
	DecidedBy    string    `json:"decided_by,omitempty"`
	Version      int64     `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Input is the owner-supplied part of a new appointment.
type Input struct {
	OwnerName   string `json:"owner_name" validate:"required,max=200"`
	OwnerEmail  string `json:"owner_email" validate:"required,email"`
	OwnerPhone  string `json:"owner_phone" validate:"max=40"`
	PetName     string `json:"pet_name" validate:"required,max=100"`
	PetSpecies  string `json:"pet_species" validate:"required,max=50"`
	PetBreed    string `json:"pet_breed" validate:"max=100"`
	DropOff     string `json:"drop_off" validate:"required,datetime=2006-01-02"`
	PickUp      string `json:"pick_up" validate:"required,datetime=2006-01-02"`
	Grooming    bool   `json:"grooming"`
	Walking     bool   `json:"walking"`
	HealthNotes string `json:"health_notes" validate:"max=2000"`
	FoodNotes   string `json:"food_notes" validate:"max=2000"`
}

// Normalize trims surrounding whitespace from the text fields.
func (in *Input) Normalize() {
	for _, f := range []*string{
		&in.OwnerName, &in.OwnerEmail, &in.OwnerPhone, &in.PetName, &in.PetSpecies,
		&in.PetBreed, &in.DropOff, &in.PickUp, &in.HealthNotes, &in.FoodNotes,
	} {
		*f = strings.TrimSpace(*f)
	}
}

// Validate checks field rules and that the stay window is not reversed.
func (in Input) Validate() error {
	if err := apperr.Validate(in); err != nil {
		return err
	}
	if _, err := Nights(in.DropOff, in.PickUp); err != nil {
		return err
	}
	return nil
}

// Nights returns the number of nights between drop-off and pick-up.
func Nights(dropOff, pickUp string) (int, error) {
	from, err := time.Parse(DateLayout, dropOff)
	if err != nil {
		return 0, &apperr.ValidationError{Field: "drop_off", Message: "invalid date format (use YYYY-MM-DD)"}
	}
	to, err := time.Parse(DateLayout, pickUp)
	if err != nil {
		return 0, &apperr.ValidationError{Field: "pick_up", Message: "invalid date format (use YYYY-MM-DD)"}
	}
	if to.Before(from) {
		return 0, &apperr.ValidationError{Field: "pick_up", Message: "must not be before drop_off"}
	}
	return int(to.Sub(from).Hours() / 24), nil
}
