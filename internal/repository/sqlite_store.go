package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/school-activities/internal/model"
)

// SQLiteRepository stores activities in SQLite. The *sql.DB is expected to
// come from database.OpenSQLite, whose single connection serialises the
// read-check-write sequences below.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository constructs a SQLiteRepository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Seed inserts records when the activities table is empty.
func (r *SQLiteRepository) Seed(ctx context.Context, records []model.ActivityRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`).Scan(&n); err != nil {
		return fmt.Errorf("count activities: %w", err)
	}
	if n > 0 {
		return nil
	}

	for i, rec := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO activities (name, description, schedule, max_participants, category, date, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.Name, rec.Description, rec.Schedule, rec.MaxParticipants, rec.Category, rec.Date, i,
		); err != nil {
			return fmt.Errorf("insert activity %q: %w", rec.Name, err)
		}
		for _, email := range rec.Participants {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO participants (activity_name, email) VALUES (?, ?)`,
				rec.Name, email,
			); err != nil {
				return fmt.Errorf("insert participant: %w", err)
			}
		}
	}
	return tx.Commit()
}

// List returns all activities ordered by position.
func (r *SQLiteRepository) List(ctx context.Context) ([]model.ActivityRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, description, schedule, max_participants, category, date
		 FROM activities
		 ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var records []model.ActivityRecord
	index := make(map[string]int)
	for rows.Next() {
		rec := model.ActivityRecord{Activity: model.Activity{Participants: []string{}}}
		if err := rows.Scan(&rec.Name, &rec.Description, &rec.Schedule, &rec.MaxParticipants, &rec.Category, &rec.Date); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		index[rec.Name] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Release the only connection before the second query.
	rows.Close()

	prows, err := r.db.QueryContext(ctx,
		`SELECT activity_name, email FROM participants ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer prows.Close()

	for prows.Next() {
		var name, email string
		if err := prows.Scan(&name, &email); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		if i, ok := index[name]; ok {
			records[i].Participants = append(records[i].Participants, email)
		}
	}
	return records, prows.Err()
}

// Signup adds email to the named activity inside a transaction.
func (r *SQLiteRepository) Signup(ctx context.Context, name, email string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var capacity int
	err = tx.QueryRowContext(ctx,
		`SELECT max_participants FROM activities WHERE name = ?`, name,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get activity: %w", err)
	}

	var dup, count int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(email = ?), 0), COUNT(*) FROM participants WHERE activity_name = ?`,
		email, name,
	).Scan(&dup, &count)
	if err != nil {
		return fmt.Errorf("count participants: %w", err)
	}
	if dup > 0 {
		return ErrAlreadyRegistered
	}
	if count >= capacity {
		return ErrActivityFull
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO participants (activity_name, email) VALUES (?, ?)`, name, email,
	); err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return tx.Commit()
}

// Unregister removes email from the named activity.
func (r *SQLiteRepository) Unregister(ctx context.Context, name, email string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM activities WHERE name = ?`, name).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get activity: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM participants WHERE activity_name = ? AND email = ?`, name, email,
	)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotRegistered
	}
	return tx.Commit()
}
