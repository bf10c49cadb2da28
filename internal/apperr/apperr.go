// Package apperr defines the typed failures surfaced by the daycare lifecycle.
//
// Every precondition violation is reported as one of these types so callers
// can tell them apart with errors.As and map them to a response.
package apperr

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a referenced id does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// InvalidTransitionError reports a status precondition violation.
type InvalidTransitionError struct {
	ID     string
	Op     string
	Status string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s appointment %s in status %s", e.Op, e.ID, e.Status)
}

// ConflictError reports a duplicate check-in for an appointment that is
// already present.
type ConflictError struct {
	AppointmentID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("appointment %s is already checked in", e.AppointmentID)
}

// AlreadyClosedError reports a second check-out of the same occupancy record.
type AlreadyClosedError struct {
	OccupancyID string
}

func (e *AlreadyClosedError) Error() string {
	return fmt.Sprintf("occupancy %s is already checked out", e.OccupancyID)
}

// NotCheckedInError reports a daily log attempt without an open occupancy.
type NotCheckedInError struct {
	AppointmentID string
}

func (e *NotCheckedInError) Error() string {
	return fmt.Sprintf("appointment %s is not checked in", e.AppointmentID)
}

// ValidationError reports malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Code returns a stable machine-readable code for err, or "internal" when err
// is not one of the lifecycle failures.
func Code(err error) string {
	var (
		notFound   *NotFoundError
		transition *InvalidTransitionError
		conflict   *ConflictError
		closed     *AlreadyClosedError
		notIn      *NotCheckedInError
		invalid    *ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &transition):
		return "invalid_transition"
	case errors.As(err, &conflict):
		return "conflict"
	case errors.As(err, &closed):
		return "already_closed"
	case errors.As(err, &notIn):
		return "not_checked_in"
	case errors.As(err, &invalid):
		return "validation"
	default:
		return "internal"
	}
}
