package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/evcraddock/pawstay/internal/apperr"
	"github.com/evcraddock/pawstay/internal/sentiment"
)

// Repository provides data access for reviews.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a review repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, appointment_id, owner_name, pet_name, pet_species, grooming, walking, rating, comment, sentiment, created_at`

// Insert stores a new review.
func (r *Repository) Insert(ctx context.Context, rv *Review) error {
	var apptID uuid.NullUUID
	if rv.AppointmentID != nil {
		apptID = uuid.NullUUID{UUID: *rv.AppointmentID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reviews (id, appointment_id, owner_name, pet_name, pet_species, grooming, walking, rating, comment, sentiment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rv.ID, apptID, rv.OwnerName, rv.PetName, rv.PetSpecies, rv.Grooming, rv.Walking,
		rv.Rating, rv.Comment, string(rv.Sentiment), rv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting review: %w", err)
	}
	return nil
}

// GetByID returns a review by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	query := fmt.Sprintf("SELECT %s FROM reviews WHERE id = ?", selectColumns)
	rv, err := scanReview(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &apperr.NotFoundError{Entity: "review", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("querying review %s: %w", id, err)
	}
	return rv, nil
}

// List returns reviews newest first, optionally filtered by sentiment.
func (r *Repository) List(ctx context.Context, filter sentiment.Sentiment) (reviews []*Review, err error) {
	query := fmt.Sprintf("SELECT %s FROM reviews", selectColumns)
	var args []any
	if filter != "" {
		query += " WHERE sentiment = ?"
		args = append(args, string(filter))
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reviews: %w", err)
	}
	return reviews, nil
}

// Delete removes a review by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting review: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return &apperr.NotFoundError{Entity: "review", ID: id.String()}
	}
	return nil
}

func scanReview(row interface{ Scan(...any) error }) (*Review, error) {
	var rv Review
	var apptID uuid.NullUUID
	var s string
	err := row.Scan(&rv.ID, &apptID, &rv.OwnerName, &rv.PetName, &rv.PetSpecies, &rv.Grooming,
		&rv.Walking, &rv.Rating, &rv.Comment, &s, &rv.CreatedAt)
	if err != nil {
		return nil, err
	}
	if apptID.Valid {
		id := apptID.UUID
		rv.AppointmentID = &id
	}
	rv.Sentiment = sentiment.Sentiment(s)
	return &rv, nil
}
