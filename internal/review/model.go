// Package review provides post-stay owner feedback and its data access.
package review

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evcraddock/pawstay/internal/apperr"
	"github.com/evcraddock/pawstay/internal/sentiment"
)

// Review is owner feedback about a stay. Sentiment is derived once at
// creation and stored.
type Review struct {
	ID            uuid.UUID           `json:"id"`
	AppointmentID *uuid.UUID          `json:"appointment_id,omitempty"`
	OwnerName     string              `json:"owner_name"`
	PetName       string              `json:"pet_name"`
	PetSpecies    string              `json:"pet_species"`
	Grooming      bool                `json:"grooming"`
	Walking       bool                `json:"walking"`
	Rating        int                 `json:"rating"`
	Comment       string              `json:"comment"`
	Sentiment     sentiment.Sentiment `json:"sentiment"`
	CreatedAt     time.Time           `json:"created_at"`
}

// Input is a review as submitted. Fields left empty are copied from the
// referenced appointment when it exists.
type Input struct {
	AppointmentID string `json:"appointment_id" validate:"omitempty,uuid"`
	OwnerName     string `json:"owner_name" validate:"max=200"`
	PetName       string `json:"pet_name" validate:"max=100"`
	PetSpecies    string `json:"pet_species" validate:"max=50"`
	Grooming      *bool  `json:"grooming,omitempty"`
	Walking       *bool  `json:"walking,omitempty"`
	Rating        int    `json:"rating" validate:"min=1,max=5"`
	Comment       string `json:"comment" validate:"max=4000"`
}

// Validate checks field rules.
func (in *Input) Validate() error {
	in.AppointmentID = strings.TrimSpace(in.AppointmentID)
	in.OwnerName = strings.TrimSpace(in.OwnerName)
	in.PetName = strings.TrimSpace(in.PetName)
	in.PetSpecies = strings.TrimSpace(in.PetSpecies)
	return apperr.Validate(in)
}

// ParseSentiment parses an optional sentiment filter. Empty means all.
func ParseSentiment(s string) (sentiment.Sentiment, error) {
	st := sentiment.Sentiment(strings.ToLower(strings.TrimSpace(s)))
	if st == "" || st.IsValid() {
		return st, nil
	}
	return "", &apperr.ValidationError{Field: "sentiment", Message: "must be one of good, neutral, bad"}
}
