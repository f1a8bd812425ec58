// Package docstore owns the sqlite document database: connection setup
// and schema migration. Repositories receive the *sql.DB and stay
// unaware of file paths and pragmas.
package docstore

import (
	"context"
	"database/sql"
	"fmt"

	// SQLite driver.
	_ "modernc.org/sqlite"
)

// Open opens (or creates) the document database and applies the schema.
// WAL journal mode keeps readers unblocked during writes; a single open
// connection is the optimal pool for sqlite under WAL.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open docstore %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping docstore: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate docstore: %w", err)
	}

	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS terpenes (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		aroma         TEXT NOT NULL DEFAULT '',
		effects       TEXT NOT NULL DEFAULT '[]',
		description   TEXT NOT NULL DEFAULT '',
		boiling_point REAL,
		strain_ids    TEXT NOT NULL DEFAULT '[]',
		vector_id     TEXT NOT NULL DEFAULT '',
		is_active     INTEGER NOT NULL DEFAULT 1,
		created_at    INTEGER NOT NULL,
		updated_at    INTEGER NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_terpenes_name_active
		ON terpenes(name) WHERE is_active = 1`,

	`CREATE TABLE IF NOT EXISTS strains (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		type        TEXT NOT NULL,
		thc         REAL,
		cbd         REAL,
		description TEXT NOT NULL DEFAULT '',
		is_active   INTEGER NOT NULL DEFAULT 1,
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_strains_name_active
		ON strains(name) WHERE is_active = 1`,

	`CREATE TABLE IF NOT EXISTS interactions (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		session_id TEXT NOT NULL DEFAULT '',
		event_type TEXT NOT NULL,
		category   TEXT NOT NULL,
		intent     TEXT NOT NULL DEFAULT '',
		timestamp  INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_user_ts
		ON interactions(user_id, timestamp)`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		last_activity INTEGER NOT NULL,
		interactions  INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user
		ON sessions(user_id, last_activity)`,
}
