package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/school-activities/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores activities in PostgreSQL using pgx directly.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Seed inserts records when the activities table is empty.
func (r *PostgresRepository) Seed(ctx context.Context, records []model.ActivityRecord) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Serialise concurrent seeders on the table.
	if _, err = tx.Exec(ctx, `LOCK TABLE activities IN EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("lock activities: %w", err)
	}

	var n int
	if err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM activities`).Scan(&n); err != nil {
		return fmt.Errorf("count activities: %w", err)
	}
	if n > 0 {
		return tx.Rollback(ctx)
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(
			`INSERT INTO activities (name, description, schedule, max_participants, category, date)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			rec.Name, rec.Description, rec.Schedule, rec.MaxParticipants, rec.Category, rec.Date,
		)
		for _, email := range rec.Participants {
			batch.Queue(
				`INSERT INTO participants (activity_name, email) VALUES ($1, $2)`,
				rec.Name, email,
			)
		}
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert seed activities: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// List returns all activities ordered by position, participants in
// registration order.
func (r *PostgresRepository) List(ctx context.Context) ([]model.ActivityRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.name, a.description, a.schedule, a.max_participants, a.category, a.date,
		        COALESCE(array_agg(p.email ORDER BY p.position) FILTER (WHERE p.email IS NOT NULL), '{}')
		 FROM activities a
		 LEFT JOIN participants p ON p.activity_name = a.name
		 GROUP BY a.name
		 ORDER BY a.position`,
	)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var records []model.ActivityRecord
	for rows.Next() {
		var rec model.ActivityRecord
		if err := rows.Scan(&rec.Name, &rec.Description, &rec.Schedule, &rec.MaxParticipants,
			&rec.Category, &rec.Date, &rec.Participants); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if rec.Participants == nil {
			rec.Participants = []string{}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Signup registers email for the named activity.
//
// The activity row is locked with SELECT … FOR UPDATE before the duplicate
// and capacity checks, so two concurrent signups for the last spot are
// serialised and the second one sees the first one's participant.
func (r *PostgresRepository) Signup(ctx context.Context, name, email string) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// ── Step 1: lock the activity row. ────────────────────────────────────
	var capacity int
	err = tx.QueryRow(ctx,
		`SELECT max_participants
		 FROM activities
		 WHERE name = $1
		 FOR UPDATE`,
		name,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock activity row: %w", err)
	}

	// ── Step 2: duplicate and capacity checks. ────────────────────────────
	var dup bool
	var count int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(bool_or(email = $2), false), COUNT(*)
		 FROM participants WHERE activity_name = $1`,
		name, email,
	).Scan(&dup, &count)
	if err != nil {
		return fmt.Errorf("count participants: %w", err)
	}
	if dup {
		return ErrAlreadyRegistered
	}
	if count >= capacity {
		return ErrActivityFull
	}

	// ── Step 3: insert and commit. ────────────────────────────────────────
	_, err = tx.Exec(ctx,
		`INSERT INTO participants (activity_name, email) VALUES ($1, $2)`,
		name, email,
	)
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Unregister removes email from the named activity.
func (r *PostgresRepository) Unregister(ctx context.Context, name, email string) error {
	var exists, removed bool
	err := r.db.QueryRow(ctx,
		`WITH a AS (SELECT name FROM activities WHERE name = $1),
		      d AS (DELETE FROM participants
		            WHERE activity_name IN (SELECT name FROM a) AND email = $2
		            RETURNING 1)
		 SELECT EXISTS (SELECT 1 FROM a), EXISTS (SELECT 1 FROM d)`,
		name, email,
	).Scan(&exists, &removed)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	if !removed {
		return ErrNotRegistered
	}
	return nil
}
