package dailylog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/evcraddock/pawstay/internal/db"
)

// Repository provides append and list operations for daily log entries.
// Entries are never updated or deleted.
type Repository struct {
	q db.DBTX
}

// NewRepository creates a daily log repository over a database or
// transaction.
func NewRepository(q db.DBTX) *Repository {
	return &Repository{q: q}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{q: tx}
}

// Append stores a new entry.
func (r *Repository) Append(ctx context.Context, e *Entry) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO daily_logs
			(id, appointment_id, occupancy_id, log_date, feeding, play, walk, grooming, mood, note, author, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.AppointmentID, e.OccupancyID, e.LogDate, e.Feeding, e.Play, e.Walk, e.Grooming,
		string(e.Mood), e.Note, e.Author, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting daily log: %w", err)
	}
	return nil
}

// ListByAppointment returns an appointment's entries by log date, then
// creation time.
func (r *Repository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) (entries []*Entry, err error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, appointment_id, occupancy_id, log_date, feeding, play, walk, grooming, mood, note, author, created_at
		 FROM daily_logs WHERE appointment_id = ? ORDER BY log_date, created_at, rowid`,
		appointmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing daily logs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var e Entry
		var mood string
		if err := rows.Scan(&e.ID, &e.AppointmentID, &e.OccupancyID, &e.LogDate, &e.Feeding, &e.Play,
			&e.Walk, &e.Grooming, &mood, &e.Note, &e.Author, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning daily log: %w", err)
		}
		e.Mood = Mood(mood)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating daily logs: %w", err)
	}
	return entries, nil
}
