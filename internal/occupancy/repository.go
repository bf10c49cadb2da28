package occupancy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/evcraddock/pawstay/internal/apperr"
	"github.com/evcraddock/pawstay/internal/db"
)

// Repository provides data access for occupancy records.
type Repository struct {
	q db.DBTX
}

// NewRepository creates an occupancy repository over a database or
// transaction.
func NewRepository(q db.DBTX) *Repository {
	return &Repository{q: q}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{q: tx}
}

const selectColumns = `id, appointment_id, checked_in_at, checked_in_by, checked_out_at, checked_out_by`

// Open inserts a new open occupancy. A second open record for the same
// appointment violates idx_occupancies_open and is reported as a
// *apperr.ConflictError.
func (r *Repository) Open(ctx context.Context, o *Occupancy) error {
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO occupancies (id, appointment_id, checked_in_at, checked_in_by) VALUES (?, ?, ?, ?)",
		o.ID, o.AppointmentID, o.CheckedInAt, o.CheckedInBy,
	)
	if db.IsUniqueViolation(err) {
		return &apperr.ConflictError{AppointmentID: o.AppointmentID.String()}
	}
	if err != nil {
		return fmt.Errorf("inserting occupancy: %w", err)
	}
	return nil
}

// Close sets the check-out time on an open occupancy.
func (r *Repository) Close(ctx context.Context, id uuid.UUID, at time.Time, by string) error {
	result, err := r.q.ExecContext(ctx,
		"UPDATE occupancies SET checked_out_at = ?, checked_out_by = ? WHERE id = ? AND checked_out_at IS NULL",
		at, by, id,
	)
	if err != nil {
		return fmt.Errorf("closing occupancy: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		// Either missing or already closed; GetByID tells them apart.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return &apperr.AlreadyClosedError{OccupancyID: id.String()}
	}
	return nil
}

// GetByID returns an occupancy by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Occupancy, error) {
	query := fmt.Sprintf("SELECT %s FROM occupancies WHERE id = ?", selectColumns)
	o, err := scanOccupancy(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &apperr.NotFoundError{Entity: "occupancy", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("querying occupancy %s: %w", id, err)
	}
	return o, nil
}

// OpenFor returns the open occupancy of an appointment, or nil if the pet is
// not on site.
func (r *Repository) OpenFor(ctx context.Context, appointmentID uuid.UUID) (*Occupancy, error) {
	query := fmt.Sprintf("SELECT %s FROM occupancies WHERE appointment_id = ? AND checked_out_at IS NULL", selectColumns)
	o, err := scanOccupancy(r.q.QueryRowContext(ctx, query, appointmentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying open occupancy: %w", err)
	}
	return o, nil
}

// ListByAppointment returns every stay of an appointment, oldest first.
func (r *Repository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) (occs []*Occupancy, err error) {
	query := fmt.Sprintf("SELECT %s FROM occupancies WHERE appointment_id = ? ORDER BY checked_in_at, rowid", selectColumns)
	rows, err := r.q.QueryContext(ctx, query, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("listing occupancies: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		o, err := scanOccupancy(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning occupancy: %w", err)
		}
		occs = append(occs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating occupancies: %w", err)
	}
	return occs, nil
}

// CountOpen returns how many open records exist for an appointment.
func (r *Repository) CountOpen(ctx context.Context, appointmentID uuid.UUID) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM occupancies WHERE appointment_id = ? AND checked_out_at IS NULL", appointmentID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting open occupancies: %w", err)
	}
	return n, nil
}

func scanOccupancy(row interface{ Scan(...any) error }) (*Occupancy, error) {
	var o Occupancy
	var out sql.NullTime
	if err := row.Scan(&o.ID, &o.AppointmentID, &o.CheckedInAt, &o.CheckedInBy, &out, &o.CheckedOutBy); err != nil {
		return nil, err
	}
	if out.Valid {
		t := out.Time
		o.CheckedOutAt = &t
	}
	return &o, nil
}
