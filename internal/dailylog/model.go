// Package dailylog provides the append-only care journal kept during a stay.
package dailylog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evcraddock/pawstay/internal/apperr"
)

// Mood classifies how the pet seemed that day.
type Mood string

const (
	Happy   Mood = "happy"
	Calm    Mood = "calm"
	Playful Mood = "playful"
	Anxious Mood = "anxious"
	Tired   Mood = "tired"
	Unwell  Mood = "unwell"
)

// ValidMoods is the set of allowed moods.
var ValidMoods = []Mood{Happy, Calm, Playful, Anxious, Tired, Unwell}

// ParseMood parses a mood case-insensitively.
func ParseMood(s string) (Mood, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", &apperr.ValidationError{Field: "mood", Message: fmt.Sprintf("unknown mood %q", s)}
	}
	return m, nil
}

// IsValid checks if a mood is recognized.
func (m Mood) IsValid() bool {
	for _, v := range ValidMoods {
		if m == v {
			return true
		}
	}
	return false
}

// Entry is one care note for a checked-in pet.
type Entry struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	OccupancyID   uuid.UUID `json:"occupancy_id"`
	LogDate       string    `json:"log_date"` // YYYY-MM-DD
	Feeding       string    `json:"feeding"`
	Play          string    `json:"play"`
	Walk          string    `json:"walk"`
	Grooming      string    `json:"grooming"`
	Mood          Mood      `json:"mood"`
	Note          string    `json:"note"`
	Author        string    `json:"author"`
	CreatedAt     time.Time `json:"created_at"`
}

// Input is the staff-supplied part of a log entry.
type Input struct {
	LogDate  string `json:"log_date" validate:"required,datetime=2006-01-02"`
	Feeding  string `json:"feeding" validate:"max=500"`
	Play     string `json:"play" validate:"max=500"`
	Walk     string `json:"walk" validate:"max=500"`
	Grooming string `json:"grooming" validate:"max=500"`
	Mood     string `json:"mood" validate:"required"`
	Note     string `json:"note" validate:"max=2000"`
}

// Validate checks field rules and normalizes the mood.
func (in *Input) Validate() error {
	in.LogDate = strings.TrimSpace(in.LogDate)
	if err := apperr.Validate(in); err != nil {
		return err
	}
	m, err := ParseMood(in.Mood)
	if err != nil {
		return err
	}
	in.Mood = string(m)
	return nil
}
