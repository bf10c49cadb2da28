package appointment

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

// Repository provides data access for appointments. Status changes go
// through Transition only.
type Repository struct {
	q db.DBTX
}

// NewRepository creates an appointment repository over a database or
// transaction.
func NewRepository(q db.DBTX) *Repository {
	return &Repository{q: q}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{q: tx}
}

const insertSQL = `INSERT INTO appointments
	(id, owner_name, owner_email, owner_phone, pet_name, pet_species, pet_breed, drop_off, pick_up, nights,
	 grooming, walking, health_notes, food_notes, status, version, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SelectColumns lists appointment columns in scan order.
const SelectColumns = `id, owner_name, owner_email, owner_phone, pet_name, pet_species, pet_breed, drop_off, pick_up, nights,
	grooming, walking, health_notes, food_notes, status, rejected_from, decision_note, decided_by, version, created_at, updated_at`

// Build turns validated input into a new pending appointment.
func Build(in Input, id uuid.UUID, now time.Time) (*Appointment, error) {
	nights, err := Nights(in.DropOff, in.PickUp)
	if err != nil {
		return nil, err
	}
	return &Appointment{
		ID:          id,
		OwnerName:   in.OwnerName,
		OwnerEmail:  in.OwnerEmail,
		OwnerPhone:  in.OwnerPhone,
		PetName:     in.PetName,
		PetSpecies:  in.PetSpecies,
		PetBreed:    in.PetBreed,
		DropOff:     in.DropOff,
		PickUp:      in.PickUp,
		Nights:      nights,
		Grooming:    in.Grooming,
		Walking:     in.Walking,
		HealthNotes: in.HealthNotes,
		FoodNotes:   in.FoodNotes,
		Status:      Pending,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Insert stores a new appointment.
func (r *Repository) Insert(ctx context.Context, a *Appointment) error {
	_, err := r.q.ExecContext(ctx, insertSQL,
		a.ID, a.OwnerName, a.OwnerEmail, a.OwnerPhone, a.PetName, a.PetSpecies, a.PetBreed,
		a.DropOff, a.PickUp, a.Nights, a.Grooming, a.Walking, a.HealthNotes, a.FoodNotes,
		string(a.Status), a.Version, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting appointment: %w", err)
	}
	return nil
}

// GetByID returns an appointment by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE id = ?", SelectColumns)
	a, err := Scan(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &apperr.NotFoundError{Entity: "appointment", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("querying appointment %s: %w", id, err)
	}
	return a, nil
}

// ListByStatus returns appointments in the given status, newest first.
func (r *Repository) ListByStatus(ctx context.Context, status Status) (appts []*Appointment, err error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE status = ? ORDER BY created_at DESC, rowid DESC", SelectColumns)
	rows, err := r.q.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		a, err := Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning appointment: %w", err)
		}
		appts = append(appts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating appointments: %w", err)
	}
	return appts, nil
}

// Change describes one status transition.
type Change struct {
	From Status
	To   Status
	By   string
	Note string
	At   time.Time
}

// Transition moves an appointment from c.From to c.To. It is a
// compare-and-set: it reports false without writing when the stored status is
// no longer c.From.
func (r *Repository) Transition(ctx context.Context, id uuid.UUID, c Change) (bool, error) {
	if !CanTransition(c.From, c.To) {
		return false, fmt.Errorf("illegal transition %s -> %s", c.From, c.To)
	}

	var rejectedFrom any
	if c.To == Rejected {
		rejectedFrom = string(c.From)
	}

	result, err := r.q.ExecContext(ctx,
		`UPDATE appointments SET
			status = ?,
			rejected_from = COALESCE(?, rejected_from),
			decision_note = CASE WHEN ? = '' THEN decision_note ELSE ? END,
			decided_by = CASE WHEN ? = '' THEN decided_by ELSE ? END,
			version = version + 1,
			updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(c.To), rejectedFrom, c.Note, c.Note, c.By, c.By, c.At, id, string(c.From),
	)
	if err != nil {
		return false, fmt.Errorf("updating appointment status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}
	return n == 1, nil
}

// Scan reads an appointment from a row selected with SelectColumns.
func Scan(row interface{ Scan(...any) error }) (*Appointment, error) {
	var a Appointment
	var status string
	var rejectedFrom sql.NullString

	err := row.Scan(
		&a.ID, &a.OwnerName, &a.OwnerEmail, &a.OwnerPhone, &a.PetName, &a.PetSpecies, &a.PetBreed,
		&a.DropOff, &a.PickUp, &a.Nights, &a.Grooming, &a.Walking, &a.HealthNotes, &a.FoodNotes,
		&status, &rejectedFrom, &a.DecisionNote, &a.DecidedBy, &a.Version, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Status = Status(status)
	if rejectedFrom.Valid {
		rf := Status(rejectedFrom.String)
		a.RejectedFrom = &rf
	}
	return &a, nil
}
