// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database types
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Open connects to the record store and verifies the connection.
// SQLite is limited to a single connection so ":memory:" databases and
// writers never see SQLITE_BUSY.
func Open(dbType, url string) (*sql.DB, error) {
	driver, err := driverFor(dbType)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dbType == TypeSQLite {
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dbType == TypeSQLite {
		if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	return conn, nil
}

func driverFor(dbType string) (string, error) {
	switch dbType {
	case TypeSQLite:
		return "sqlite", nil
	case TypePostgres:
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported database type %q", dbType)
	}
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dbType string) error {
	schema := sqliteSchema
	if dbType == TypePostgres {
		schema = postgresSchema
	}

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// vote_changes.candidate_id has no foreign key: audit rows outlive the
// candidate they reference.
const postgresSchema = `
-- Candidates
CREATE TABLE IF NOT EXISTS candidates (
    id SERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    party TEXT,
    position TEXT NOT NULL DEFAULT 'candidate',
    votes INTEGER NOT NULL DEFAULT 0 CHECK (votes >= 0),
    description TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_candidates_party_votes ON candidates(party, votes DESC);

-- Vote change audit log
CREATE TABLE IF NOT EXISTS vote_changes (
    id SERIAL PRIMARY KEY,
    candidate_id INTEGER NOT NULL,
    previous_votes INTEGER NOT NULL,
    new_votes INTEGER NOT NULL CHECK (new_votes >= 0),
    change_amount BIGINT NOT NULL,
    change_type TEXT NOT NULL CHECK (change_type IN ('increment', 'decrement', 'custom')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_vote_changes_candidate_id ON vote_changes(candidate_id);
`

const sqliteSchema = `
-- Candidates
CREATE TABLE IF NOT EXISTS candidates (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    party TEXT,
    position TEXT NOT NULL DEFAULT 'candidate',
    votes INTEGER NOT NULL DEFAULT 0 CHECK (votes >= 0),
    description TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_candidates_party_votes ON candidates(party, votes DESC);

-- Vote change audit log
CREATE TABLE IF NOT EXISTS vote_changes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    candidate_id INTEGER NOT NULL,
    previous_votes INTEGER NOT NULL,
    new_votes INTEGER NOT NULL CHECK (new_votes >= 0),
    change_amount INTEGER NOT NULL,
    change_type TEXT NOT NULL CHECK (change_type IN ('increment', 'decrement', 'custom')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_vote_changes_candidate_id ON vote_changes(candidate_id);
`
