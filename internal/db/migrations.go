package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL statements to run.
//
// The tables reference each other by id only. There are no foreign keys:
// appointments are never deleted, and dependent records must tolerate a
// missing parent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS appointments (
		id            TEXT     PRIMARY KEY,
		owner_name    TEXT     NOT NULL,
		owner_email   TEXT     NOT NULL,
		owner_phone   TEXT     NOT NULL DEFAULT '',
		pet_name      TEXT     NOT NULL,
		pet_species   TEXT     NOT NULL,
		drop_off      TEXT     NOT NULL,
		pick_up       TEXT     NOT NULL,
		nights        INTEGER  NOT NULL DEFAULT 0 CHECK (nights >= 0),
		grooming      INTEGER  NOT NULL DEFAULT 0,
		walking       INTEGER  NOT NULL DEFAULT 0,
		health_notes  TEXT     NOT NULL DEFAULT '',
		food_notes    TEXT     NOT NULL DEFAULT '',
		status        TEXT     NOT NULL DEFAULT 'pending'
		              CHECK (status IN ('pending', 'approved', 'rejected', 'completed')),
		rejected_from TEXT     CHECK (rejected_from IS NULL OR rejected_from IN ('pending', 'approved')),
		decision_note TEXT     NOT NULL DEFAULT '',
		decided_by    TEXT     NOT NULL DEFAULT '',
		version       INTEGER  NOT NULL DEFAULT 1,
		created_at    DATETIME NOT NULL,
		updated_at    DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_status ON appointments (status, updated_at)`,
	`CREATE TABLE IF NOT EXISTS occupancies (
		id             TEXT     PRIMARY KEY,
		appointment_id TEXT     NOT NULL,
		checked_in_at  DATETIME NOT NULL,
		checked_in_by  TEXT     NOT NULL DEFAULT '',
		checked_out_at DATETIME,
		checked_out_by TEXT     NOT NULL DEFAULT ''
	)`,
	// At most one open stay per appointment.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_occupancies_open
		ON occupancies (appointment_id) WHERE checked_out_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_occupancies_appointment ON occupancies (appointment_id)`,
	`CREATE TABLE IF NOT EXISTS daily_logs (
		id             TEXT     PRIMARY KEY,
		appointment_id TEXT     NOT NULL,
		occupancy_id   TEXT     NOT NULL,
		log_date       TEXT     NOT NULL,
		feeding        TEXT     NOT NULL DEFAULT '',
		play           TEXT     NOT NULL DEFAULT '',
		walk           TEXT     NOT NULL DEFAULT '',
		grooming       TEXT     NOT NULL DEFAULT '',
		mood           TEXT     NOT NULL,
		note           TEXT     NOT NULL DEFAULT '',
		author         TEXT     NOT NULL DEFAULT '',
		created_at     DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_logs_appointment ON daily_logs (appointment_id, log_date)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id             TEXT     PRIMARY KEY,
		appointment_id TEXT,
		owner_name     TEXT     NOT NULL,
		pet_name       TEXT     NOT NULL DEFAULT '',
		pet_species    TEXT     NOT NULL DEFAULT '',
		grooming       INTEGER  NOT NULL DEFAULT 0,
		walking        INTEGER  NOT NULL DEFAULT 0,
		rating         INTEGER  NOT NULL CHECK (rating >= 1 AND rating <= 5),
		comment        TEXT     NOT NULL DEFAULT '',
		sentiment      TEXT     NOT NULL CHECK (sentiment IN ('good', 'neutral', 'bad')),
		created_at     DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_sentiment ON reviews (sentiment, created_at)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	// Column additions, skipped when the column already exists.
	columnMigrations := []struct {
		table, column, definition string
	}{
		{"appointments", "pet_breed", "TEXT NOT NULL DEFAULT ''"},
	}

	for _, cm := range columnMigrations {
		if err := addColumnIfNotExists(db, cm.table, cm.column, cm.definition); err != nil {
			return fmt.Errorf("adding %s.%s: %w", cm.table, cm.column, err)
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(db *sql.DB, table, column, definition string) error {
	exists, err := hasColumn(db, table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}

func hasColumn(db *sql.DB, table, column string) (found bool, err error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("checking table info: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", cerr)
		}
	}()

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, fmt.Errorf("scanning column info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterating columns: %w", err)
	}

	return false, nil
}
