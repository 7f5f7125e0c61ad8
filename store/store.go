// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/vote-tally/apperr"
	"github.com/danielhkuo/vote-tally/feed"
	"github.com/danielhkuo/vote-tally/models"
)

// Order selects how List sorts candidates.
type Order int

const (
	// OrderVotes sorts by votes descending (public view).
	OrderVotes Order = iota
	// OrderCategoryVotes sorts by category, then votes descending (admin view).
	OrderCategoryVotes
)

const candidateColumns = `id, name, party, position, votes, description, created_at`

// Store is the record store for candidates and their audit log. Every
// successful candidate write publishes exactly one change notification.
type Store struct {
	db  *sql.DB
	pub feed.Publisher
}

// New creates a store. pub may be nil, in which case no notifications are sent.
func New(db *sql.DB, pub feed.Publisher) *Store {
	return &Store{db: db, pub: pub}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (models.Candidate, error) {
	var c models.Candidate
	err := row.Scan(&c.ID, &c.Name, &c.Category, &c.Position, &c.Votes, &c.Description, timestamp{&c.CreatedAt})
	return c, err
}

// Get reads one candidate.
func (s *Store) Get(ctx context.Context, id int64) (models.Candidate, error) {
	c, err := scanCandidate(s.db.QueryRowContext(ctx, `
		SELECT `+candidateColumns+`
		FROM candidates
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Candidate{}, apperr.Read("get candidate", apperr.ErrNotFound)
	}
	if err != nil {
		return models.Candidate{}, apperr.Read("get candidate", err)
	}
	return c, nil
}

// GetVotes reads the persisted vote count of one candidate.
func (s *Store) GetVotes(ctx context.Context, id int64) (int64, error) {
	var votes int64
	err := s.db.QueryRowContext(ctx, `SELECT votes FROM candidates WHERE id = $1`, id).Scan(&votes)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.Read("get votes", apperr.ErrNotFound)
	}
	if err != nil {
		return 0, apperr.Read("get votes", err)
	}
	return votes, nil
}

// List fetches every candidate. Ties keep insertion order.
func (s *Store) List(ctx context.Context, order Order) ([]models.Candidate, error) {
	orderBy := `votes DESC, id ASC`
	if order == OrderCategoryVotes {
		orderBy = `(party IS NULL), party ASC, votes DESC, id ASC`
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+candidateColumns+`
		FROM candidates
		ORDER BY `+orderBy)
	if err != nil {
		return nil, apperr.Read("list candidates", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, apperr.Read("list candidates", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Read("list candidates", err)
	}
	return candidates, nil
}

// Insert creates a candidate with zero votes and returns the stored row.
func (s *Store) Insert(ctx context.Context, name string, category *string) (models.Candidate, error) {
	c, err := scanCandidate(s.db.QueryRowContext(ctx, `
		INSERT INTO candidates (name, party, position, votes, created_at)
		VALUES ($1, $2, $3, 0, $4)
		RETURNING `+candidateColumns,
		name, category, models.PositionCandidate, time.Now().UTC()))
	if err != nil {
		return models.Candidate{}, apperr.Write("insert candidate", err)
	}

	s.publish(ctx, feed.Change{Table: feed.TableCandidates, Type: feed.Insert, New: &c})
	return c, nil
}

// UpdateVotes overwrites the vote count and returns the updated row.
func (s *Store) UpdateVotes(ctx context.Context, id, votes int64) (models.Candidate, error) {
	c, err := scanCandidate(s.db.QueryRowContext(ctx, `
		UPDATE candidates
		SET votes = $1
		WHERE id = $2
		RETURNING `+candidateColumns,
		votes, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Candidate{}, apperr.Write("update votes", apperr.ErrNotFound)
	}
	if err != nil {
		return models.Candidate{}, apperr.Write("update votes", err)
	}

	s.publish(ctx, feed.Change{Table: feed.TableCandidates, Type: feed.Update, New: &c})
	return c, nil
}

// UpdateDescription attaches a description to an existing candidate.
func (s *Store) UpdateDescription(ctx context.Context, id int64, description string) (models.Candidate, error) {
	c, err := scanCandidate(s.db.QueryRowContext(ctx, `
		UPDATE candidates
		SET description = $1
		WHERE id = $2
		RETURNING `+candidateColumns,
		description, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Candidate{}, apperr.Write("update description", apperr.ErrNotFound)
	}
	if err != nil {
		return models.Candidate{}, apperr.Write("update description", err)
	}

	s.publish(ctx, feed.Change{Table: feed.TableCandidates, Type: feed.Update, New: &c})
	return c, nil
}

// Delete removes a candidate. Deleting a missing id is not an error and
// publishes nothing. Audit rows are kept.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return apperr.Write("delete candidate", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Write("delete candidate", err)
	}
	if n > 0 {
		s.publish(ctx, feed.Change{Table: feed.TableCandidates, Type: feed.Delete, Old: &models.Candidate{ID: id}})
	}
	return nil
}

// AppendVoteChange writes one audit entry.
func (s *Store) AppendVoteChange(ctx context.Context, ev models.VoteChangeEvent) (models.VoteChangeEvent, error) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO vote_changes (candidate_id, previous_votes, new_votes, change_amount, change_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, ev.CandidateID, ev.PreviousVotes, ev.NewVotes, ev.ChangeAmount, string(ev.ChangeType), ev.CreatedAt).Scan(&ev.ID)
	if err != nil {
		return models.VoteChangeEvent{}, apperr.Write("append vote change", err)
	}
	return ev, nil
}

// VoteChanges lists the audit entries for one candidate, oldest first.
func (s *Store) VoteChanges(ctx context.Context, candidateID int64) ([]models.VoteChangeEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, candidate_id, previous_votes, new_votes, change_amount, change_type, created_at
		FROM vote_changes
		WHERE candidate_id = $1
		ORDER BY id ASC
	`, candidateID)
	if err != nil {
		return nil, apperr.Read("list vote changes", err)
	}
	defer rows.Close()

	events := []models.VoteChangeEvent{}
	for rows.Next() {
		var ev models.VoteChangeEvent
		var changeType string
		if err := rows.Scan(&ev.ID, &ev.CandidateID, &ev.PreviousVotes, &ev.NewVotes,
			&ev.ChangeAmount, &changeType, timestamp{&ev.CreatedAt}); err != nil {
			return nil, apperr.Read("list vote changes", err)
		}
		ev.ChangeType = models.ChangeType(changeType)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Read("list vote changes", err)
	}
	return events, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// publish is best effort: the write already happened, and viewers that miss
// the notification pick the row up on their next full refresh.
func (s *Store) publish(ctx context.Context, c feed.Change) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, c); err != nil {
		slog.Warn("failed to publish change notification",
			"error", err, "type", c.Type, "row_id", c.RowID())
	}
}
