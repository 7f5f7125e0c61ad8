// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the record store: point reads, listing, inserts, updates and
deletes on the candidates table, plus appends to the vote_changes audit log.

	s := store.New(conn, broker)
	c, err := s.Insert(ctx, "Jane Doe", &category)

Each successful write to candidates publishes one feed.Change (INSERT, UPDATE
or DELETE). Audit appends publish nothing. Publish failures are logged and do
not fail the write.

Errors are apperr.StoreReadError or apperr.StoreWriteError; a missing row wraps
apperr.ErrNotFound.
*/
package store
