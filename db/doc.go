// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the record store and creates its schema.

# Connecting

Open selects the driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

  - "postgres": github.com/lib/pq
  - "sqlite":   modernc.org/sqlite (pure Go, used by the tests with ":memory:")

# Schema Creation

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - candidates: id, name, party (category), position, votes, description, created_at
  - vote_changes: append-only audit of every accepted vote mutation

vote_changes.candidate_id is deliberately not a foreign key, so removing a
candidate leaves its audit history behind as orphaned references.
*/
package db
