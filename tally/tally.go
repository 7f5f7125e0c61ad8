// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/vote-tally/apperr"
	"github.com/danielhkuo/vote-tally/metrics"
	"github.com/danielhkuo/vote-tally/models"
)

// VoteStore is the slice of the record store the mutation service needs.
type VoteStore interface {
	GetVotes(ctx context.Context, id int64) (int64, error)
	UpdateVotes(ctx context.Context, id, votes int64) (models.Candidate, error)
	AppendVoteChange(ctx context.Context, ev models.VoteChangeEvent) (models.VoteChangeEvent, error)
}

// Result describes one ApplyDelta call. A debounced call carries no
// candidate and touched nothing.
type Result struct {
	Candidate models.Candidate
	Event     *models.VoteChangeEvent
	Debounced bool
	// AuditErr is set when the vote was written but its audit entry was not.
	AuditErr error
}

// Service applies vote count changes. Each admin session owns one Service,
// so the cooldown is scoped to that session.
type Service struct {
	store    VoteStore
	debounce *Debouncer
	metrics  *metrics.Metrics
}

// Option configures a Service.
type Option func(*serviceConfig)

type serviceConfig struct {
	cooldown time.Duration
	now      func() time.Time
	metrics  *metrics.Metrics
}

// WithCooldown overrides DefaultCooldown.
func WithCooldown(d time.Duration) Option {
	return func(c *serviceConfig) { c.cooldown = d }
}

// WithClock overrides time.Now for the cooldown.
func WithClock(now func() time.Time) Option {
	return func(c *serviceConfig) { c.now = now }
}

// WithMetrics records mutation outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *serviceConfig) { c.metrics = m }
}

// NewService creates a mutation service over store.
func NewService(store VoteStore, opts ...Option) *Service {
	cfg := serviceConfig{cooldown: DefaultCooldown, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Service{
		store:    store,
		debounce: NewDebouncer(cfg.cooldown, cfg.now),
		metrics:  cfg.metrics,
	}
}

// Debouncer exposes the session cooldown.
func (s *Service) Debouncer() *Debouncer {
	return s.debounce
}

// Clamp returns current+delta limited to [0, models.MaxVotes].
func Clamp(current, delta int64) int64 {
	n := current + delta
	if delta > 0 && n < current {
		return models.MaxVotes
	}
	if n < 0 {
		return 0
	}
	if n > models.MaxVotes {
		return models.MaxVotes
	}
	return n
}

// ApplyDelta changes a candidate's votes by delta.
//
// The current count is always read from the store, never from a caller's
// view. A request for the same candidate within the cooldown of the
// previous accepted one is dropped without touching the store.
func (s *Service) ApplyDelta(ctx context.Context, candidateID, delta int64) (Result, error) {
	if !s.debounce.Allow(candidateID) {
		slog.Debug("vote update too rapid, ignoring", "candidate_id", candidateID, "delta", delta)
		s.metrics.IncDebounced()
		return Result{Debounced: true}, nil
	}

	previous, err := s.store.GetVotes(ctx, candidateID)
	if err != nil {
		slog.Error("failed to fetch current votes", "error", err, "candidate_id", candidateID)
		s.metrics.IncStoreError("read")
		return Result{}, err
	}

	next := Clamp(previous, delta)
	c, err := s.store.UpdateVotes(ctx, candidateID, next)
	if err != nil {
		slog.Error("failed to update votes", "error", err, "candidate_id", candidateID)
		s.metrics.IncStoreError("write")
		return Result{}, err
	}

	changeType := models.ChangeTypeFor(delta)
	s.metrics.IncVotesApplied(string(changeType))
	slog.Info("votes updated", "candidate_id", candidateID,
		"previous_votes", previous, "new_votes", c.Votes, "delta", delta)

	res := Result{Candidate: c}
	ev, err := s.store.AppendVoteChange(ctx, models.VoteChangeEvent{
		CandidateID:   candidateID,
		PreviousVotes: previous,
		NewVotes:      c.Votes,
		ChangeAmount:  delta,
		ChangeType:    changeType,
	})
	if err != nil {
		// Non-fatal: the vote itself is already written
		res.AuditErr = &apperr.AuditLogError{CandidateID: candidateID, Err: err}
		s.metrics.IncAuditFailure()
		slog.Warn("failed to log vote change", "error", err, "candidate_id", candidateID)
		return res, nil
	}
	res.Event = &ev
	return res, nil
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// ParseAmount parses free-text vote input as a non-negative integer.
func ParseAmount(input string) (int64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, apperr.Validation("amount", "please enter a number of votes")
	}
	if !digitsOnly.MatchString(input) {
		return 0, apperr.Validation("amount", "please enter a valid positive number")
	}
	n, err := strconv.ParseInt(input, 10, 64)
	if err != nil || n > models.MaxVotes {
		return 0, apperr.Validation("amount", "number is too large")
	}
	return n, nil
}

// ApplyCustom parses input and adds or subtracts it. Invalid input is
// rejected before any store access.
func (s *Service) ApplyCustom(ctx context.Context, candidateID int64, input, mode string) (Result, error) {
	amount, err := ParseAmount(input)
	if err != nil {
		return Result{}, err
	}

	switch mode {
	case models.ModeAdd, "":
		return s.ApplyDelta(ctx, candidateID, amount)
	case models.ModeSubtract:
		return s.ApplyDelta(ctx, candidateID, -amount)
	default:
		return Result{}, apperr.Validation("mode", "mode must be add or subtract")
	}
}

// UserMessage turns a mutation error into the text shown to an admin.
func UserMessage(err error) string {
	var v *apperr.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &v):
		return v.Message
	case apperr.IsNotFound(err):
		return "Candidate not found"
	default:
		var readErr *apperr.StoreReadError
		if errors.As(err, &readErr) {
			return "Error fetching current votes"
		}
		return "Error updating votes"
	}
}
