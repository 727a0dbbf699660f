// Package database provides connection management for the SQL storage
// backends: PostgreSQL through pgx and SQLite through modernc.org/sqlite.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shivanand-hulikatti/school-activities/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"
)

// PostgresSchema creates the activity tables. Participants keep their
// registration order through the serial position column.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS activities (
	name             TEXT PRIMARY KEY,
	description      TEXT NOT NULL DEFAULT '',
	schedule         TEXT NOT NULL DEFAULT '',
	max_participants INTEGER NOT NULL CHECK (max_participants >= 0),
	category         TEXT NOT NULL DEFAULT '',
	date             TEXT NOT NULL DEFAULT '',
	position         SERIAL
);

CREATE TABLE IF NOT EXISTS participants (
	activity_name TEXT NOT NULL REFERENCES activities(name) ON DELETE CASCADE,
	email         TEXT NOT NULL,
	position      BIGSERIAL,
	PRIMARY KEY (activity_name, email)
);`

// SQLiteSchema is the SQLite flavour of PostgresSchema.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS activities (
	name             TEXT PRIMARY KEY,
	description      TEXT NOT NULL DEFAULT '',
	schedule         TEXT NOT NULL DEFAULT '',
	max_participants INTEGER NOT NULL CHECK (max_participants >= 0),
	category         TEXT NOT NULL DEFAULT '',
	date             TEXT NOT NULL DEFAULT '',
	position         INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS participants (
	activity_name TEXT NOT NULL REFERENCES activities(name) ON DELETE CASCADE,
	email         TEXT NOT NULL,
	position      INTEGER PRIMARY KEY AUTOINCREMENT,
	UNIQUE (activity_name, email)
);`

// NewPool creates and validates a pgxpool connection pool and applies the
// schema. It retries up to 5 times to accommodate containers starting up.
func NewPool(ctx context.Context, cfg config.Database) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
		}
		slog.Warn("db connect attempt failed", "attempt", attempt, "max", 5, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, PostgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return pool, nil
}

// OpenSQLite opens (creating if needed) the SQLite database at path and
// applies the schema. The pool is limited to one connection so writes are
// serialised.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, SQLiteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
