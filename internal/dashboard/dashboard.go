// Package dashboard provides the read-only staff views over appointments,
// occupancy, and reviews.
//
// Views are computed on request from the stores. Joins are LEFT joins so a
// dangling reference shows placeholder fields instead of failing the view.
package dashboard

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/evcraddock/pawstay/internal/apperr"
	"github.com/evcraddock/pawstay/internal/appointment"
	"github.com/evcraddock/pawstay/internal/report"
	"github.com/evcraddock/pawstay/internal/sentiment"
)

// Placeholder is shown for fields of a missing appointment.
const Placeholder = "(unknown)"

// Service computes dashboard views.
type Service struct {
	db *sqlx.DB
}

// NewService creates a dashboard service over an open database.
func NewService(d *sql.DB) *Service {
	return &Service{db: sqlx.NewDb(d, "sqlite3")}
}

// Summary is an appointment row in the Pending and Upcoming views.
type Summary struct {
	ID         string    `db:"id" json:"id"`
	OwnerName  string    `db:"owner_name" json:"owner_name"`
	OwnerEmail string    `db:"owner_email" json:"owner_email"`
	OwnerPhone string    `db:"owner_phone" json:"owner_phone"`
	PetName    string    `db:"pet_name" json:"pet_name"`
	PetSpecies string    `db:"pet_species" json:"pet_species"`
	DropOff    string    `db:"drop_off" json:"drop_off"`
	PickUp     string    `db:"pick_up" json:"pick_up"`
	Nights     int       `db:"nights" json:"nights"`
	Grooming   bool      `db:"grooming" json:"grooming"`
	Walking    bool      `db:"walking" json:"walking"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

const summaryColumns = `a.id, a.owner_name, a.owner_email, a.owner_phone, a.pet_name, a.pet_species,
	a.drop_off, a.pick_up, a.nights, a.grooming, a.walking, a.status, a.created_at`

// Pending returns appointments awaiting a decision, newest first.
func (s *Service) Pending(ctx context.Context) ([]Summary, error) {
	rows := []Summary{}
	query := `SELECT ` + summaryColumns + ` FROM appointments a
		WHERE a.status = ?
		ORDER BY a.created_at DESC, a.rowid DESC`
	if err := s.db.SelectContext(ctx, &rows, query, string(appointment.Pending)); err != nil {
		return nil, fmt.Errorf("querying pending appointments: %w", err)
	}
	return rows, nil
}

// Upcoming returns approved appointments starting on or after today that
// have never been checked in, soonest first. today is YYYY-MM-DD.
func (s *Service) Upcoming(ctx context.Context, today string) ([]Summary, error) {
	if _, err := time.Parse(appointment.DateLayout, today); err != nil {
		return nil, &apperr.ValidationError{Field: "date", Message: "invalid date format (use YYYY-MM-DD)"}
	}

	rows := []Summary{}
	query := `SELECT ` + summaryColumns + ` FROM appointments a
		WHERE a.status = ?
		  AND a.drop_off >= ?
		  AND NOT EXISTS (SELECT 1 FROM occupancies o WHERE o.appointment_id = a.id)
		ORDER BY a.drop_off, a.created_at, a.rowid`
	if err := s.db.SelectContext(ctx, &rows, query, string(appointment.Approved), today); err != nil {
		return nil, fmt.Errorf("querying upcoming appointments: %w", err)
	}
	return rows, nil
}

// Occupant is a pet currently on site.
type Occupant struct {
	OccupancyID        string    `db:"occupancy_id" json:"occupancy_id"`
	AppointmentID      string    `db:"appointment_id" json:"appointment_id"`
	CheckedInAt        time.Time `db:"checked_in_at" json:"checked_in_at"`
	CheckedInBy        string    `db:"checked_in_by" json:"checked_in_by"`
	OwnerName          string    `db:"owner_name" json:"owner_name"`
	OwnerPhone         string    `db:"owner_phone" json:"owner_phone"`
	PetName            string    `db:"pet_name" json:"pet_name"`
	PetSpecies         string    `db:"pet_species" json:"pet_species"`
	PickUp             string    `db:"pick_up" json:"pick_up"`
	HealthNotes        string    `db:"health_notes" json:"health_notes"`
	FoodNotes          string    `db:"food_notes" json:"food_notes"`
	LastMood           *string   `db:"last_mood" json:"last_mood,omitempty"`
	MissingAppointment bool      `db:"missing_appointment" json:"missing_appointment,omitempty"`
}

// Occupants returns every open occupancy joined to its appointment, in
// check-in order.
func (s *Service) Occupants(ctx context.Context) ([]Occupant, error) {
	rows := []Occupant{}
	query := `SELECT
			o.id AS occupancy_id,
			o.appointment_id,
			o.checked_in_at,
			o.checked_in_by,
			COALESCE(a.owner_name, ?) AS owner_name,
			COALESCE(a.owner_phone, '') AS owner_phone,
			COALESCE(a.pet_name, ?) AS pet_name,
			COALESCE(a.pet_species, '') AS pet_species,
			COALESCE(a.pick_up, '') AS pick_up,
			COALESCE(a.health_notes, '') AS health_notes,
			COALESCE(a.food_notes, '') AS food_notes,
			(SELECT l.mood FROM daily_logs l WHERE l.occupancy_id = o.id
			 ORDER BY l.log_date DESC, l.created_at DESC, l.rowid DESC LIMIT 1) AS last_mood,
			a.id IS NULL AS missing_appointment
		FROM occupancies o
		LEFT JOIN appointments a ON a.id = o.appointment_id
		WHERE o.checked_out_at IS NULL
		ORDER BY o.checked_in_at, o.rowid`
	if err := s.db.SelectContext(ctx, &rows, query, Placeholder, Placeholder); err != nil {
		return nil, fmt.Errorf("querying occupants: %w", err)
	}
	return rows, nil
}

// HistoryFilter narrows the History view. A zero Status means both
// completed and rejected.
type HistoryFilter struct {
	Status appointment.Status
}

// HistoryRow is a closed appointment with its outcome.
type HistoryRow struct {
	ID           string     `db:"id" json:"id"`
	OwnerName    string     `db:"owner_name" json:"owner_name"`
	PetName      string     `db:"pet_name" json:"pet_name"`
	PetSpecies   string     `db:"pet_species" json:"pet_species"`
	DropOff      string     `db:"drop_off" json:"drop_off"`
	PickUp       string     `db:"pick_up" json:"pick_up"`
	Status       string     `db:"status" json:"status"`
	RejectedFrom *string    `db:"rejected_from" json:"rejected_from,omitempty"`
	DecisionNote string     `db:"decision_note" json:"decision_note,omitempty"`
	DecidedBy    string     `db:"decided_by" json:"decided_by,omitempty"`
	CheckedInAt  *time.Time `db:"checked_in_at" json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time `db:"checked_out_at" json:"checked_out_at,omitempty"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// History returns completed and rejected appointments, most recently
// closed first. Completed rows carry the times of their last stay.
func (s *Service) History(ctx context.Context, f HistoryFilter) ([]HistoryRow, error) {
	statuses := []string{string(appointment.Completed), string(appointment.Rejected)}
	if f.Status != "" {
		if f.Status != appointment.Completed && f.Status != appointment.Rejected {
			return nil, &apperr.ValidationError{Field: "status", Message: "must be completed or rejected"}
		}
		statuses = []string{string(f.Status)}
	}

	query, args, err := sqlx.In(`SELECT
			a.id, a.owner_name, a.pet_name, a.pet_species, a.drop_off, a.pick_up,
			a.status, a.rejected_from, a.decision_note, a.decided_by,
			o.checked_in_at, o.checked_out_at, a.updated_at
		FROM appointments a
		LEFT JOIN occupancies o ON o.id = (
			SELECT o2.id FROM occupancies o2 WHERE o2.appointment_id = a.id
			ORDER BY o2.checked_in_at DESC, o2.rowid DESC LIMIT 1
		)
		WHERE a.status IN (?)
		ORDER BY a.updated_at DESC, a.rowid DESC`, statuses)
	if err != nil {
		return nil, fmt.Errorf("building history query: %w", err)
	}

	rows := []HistoryRow{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	return rows, nil
}

// ReviewRow is a review joined to the appointment it references.
type ReviewRow struct {
	ID                string    `db:"id" json:"id"`
	AppointmentID     *string   `db:"appointment_id" json:"appointment_id,omitempty"`
	OwnerName         string    `db:"owner_name" json:"owner_name"`
	PetName           string    `db:"pet_name" json:"pet_name"`
	PetSpecies        string    `db:"pet_species" json:"pet_species"`
	Grooming          bool      `db:"grooming" json:"grooming"`
	Walking           bool      `db:"walking" json:"walking"`
	Rating            int       `db:"rating" json:"rating"`
	Comment           string    `db:"comment" json:"comment"`
	Sentiment         string    `db:"sentiment" json:"sentiment"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	AppointmentStatus *string   `db:"appointment_status" json:"appointment_status,omitempty"`
	StayDropOff       *string   `db:"stay_drop_off" json:"stay_drop_off,omitempty"`
	StayPickUp        *string   `db:"stay_pick_up" json:"stay_pick_up,omitempty"`
	Dangling          bool      `db:"dangling" json:"dangling,omitempty"`
}

// Reviews returns reviews newest first, optionally filtered by sentiment.
func (s *Service) Reviews(ctx context.Context, filter sentiment.Sentiment) ([]ReviewRow, error) {
	if filter != "" && !filter.IsValid() {
		return nil, &apperr.ValidationError{Field: "sentiment", Message: "must be one of good, neutral, bad"}
	}

	query := `SELECT
			r.id, r.appointment_id,
			r.owner_name,
			CASE WHEN r.pet_name = '' THEN COALESCE(a.pet_name, ?) ELSE r.pet_name END AS pet_name,
			r.pet_species, r.grooming, r.walking, r.rating, r.comment, r.sentiment, r.created_at,
			a.status AS appointment_status,
			a.drop_off AS stay_drop_off,
			a.pick_up AS stay_pick_up,
			(r.appointment_id IS NOT NULL AND a.id IS NULL) AS dangling
		FROM reviews r
		LEFT JOIN appointments a ON a.id = r.appointment_id`
	args := []any{Placeholder}
	if filter != "" {
		query += " WHERE r.sentiment = ?"
		args = append(args, string(filter))
	}
	query += " ORDER BY r.created_at DESC, r.rowid DESC"

	rows := []ReviewRow{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying reviews: %w", err)
	}
	return rows, nil
}

// Export renders the filtered Reviews view with exp.
func (s *Service) Export(ctx context.Context, filter sentiment.Sentiment, exp report.Exporter) (*report.Artifact, error) {
	rows, err := s.Reviews(ctx, filter)
	if err != nil {
		return nil, err
	}

	entries := make([]report.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, report.Entry{
			CreatedAt:  r.CreatedAt,
			OwnerName:  r.OwnerName,
			PetName:    r.PetName,
			PetSpecies: r.PetSpecies,
			Grooming:   r.Grooming,
			Walking:    r.Walking,
			Rating:     r.Rating,
			Sentiment:  r.Sentiment,
			Comment:    r.Comment,
		})
	}

	title := "Pawstay Reviews"
	if filter != "" {
		title = fmt.Sprintf("Pawstay Reviews (%s)", filter)
	}

	a, err := exp.Export(title, entries)
	if err != nil {
		return nil, fmt.Errorf("exporting reviews: %w", err)
	}
	return a, nil
}
