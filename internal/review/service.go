package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/evcraddock/pawstay/internal/apperr"
	"github.com/evcraddock/pawstay/internal/appointment"
	"github.com/evcraddock/pawstay/internal/sentiment"
)

// Service creates and manages reviews.
type Service struct {
	repo  *Repository
	appts *appointment.Repository
	now   func() time.Time
}

// NewService creates a review service.
func NewService(repo *Repository, appts *appointment.Repository) *Service {
	return &Service{repo: repo, appts: appts, now: time.Now}
}

// Create validates input, fills omitted fields from the referenced
// appointment, classifies sentiment and stores the review.
//
// An appointment id that matches no appointment is kept as a dangling
// reference; the review is still accepted.
func (s *Service) Create(ctx context.Context, in Input) (*Review, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	rv := &Review{
		ID:         uuid.New(),
		OwnerName:  in.OwnerName,
		PetName:    in.PetName,
		PetSpecies: in.PetSpecies,
		Rating:     in.Rating,
		Comment:    in.Comment,
		CreatedAt:  s.now().UTC(),
	}
	if in.Grooming != nil {
		rv.Grooming = *in.Grooming
	}
	if in.Walking != nil {
		rv.Walking = *in.Walking
	}

	if in.AppointmentID != "" {
		id, err := uuid.Parse(in.AppointmentID)
		if err != nil {
			return nil, &apperr.ValidationError{Field: "appointment_id", Message: "must be a valid UUID"}
		}
		rv.AppointmentID = &id

		a, err := s.appts.GetByID(ctx, id)
		var nf *apperr.NotFoundError
		switch {
		case errors.As(err, &nf):
			slog.Warn("review references unknown appointment", "appointment_id", id)
		case err != nil:
			return nil, fmt.Errorf("loading appointment: %w", err)
		default:
			fillFromAppointment(rv, in, a)
		}
	}

	if rv.OwnerName == "" {
		return nil, &apperr.ValidationError{Field: "owner_name", Message: "is required"}
	}

	rv.Sentiment = sentiment.Classify(rv.Rating, rv.Comment)

	if err := s.repo.Insert(ctx, rv); err != nil {
		return nil, fmt.Errorf("saving review: %w", err)
	}
	return rv, nil
}

func fillFromAppointment(rv *Review, in Input, a *appointment.Appointment) {
	if rv.OwnerName == "" {
		rv.OwnerName = a.OwnerName
	}
	if rv.PetName == "" {
		rv.PetName = a.PetName
	}
	if rv.PetSpecies == "" {
		rv.PetSpecies = a.PetSpecies
	}
	if in.Grooming == nil {
		rv.Grooming = a.Grooming
	}
	if in.Walking == nil {
		rv.Walking = a.Walking
	}
}

// List returns reviews newest first, optionally filtered by sentiment.
func (s *Service) List(ctx context.Context, filter sentiment.Sentiment) ([]*Review, error) {
	return s.repo.List(ctx, filter)
}

// Delete removes a review. Deletion is unguarded.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
