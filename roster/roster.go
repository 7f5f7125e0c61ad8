// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package roster

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/danielhkuo/vote-tally/apperr"
	"github.com/danielhkuo/vote-tally/metrics"
	"github.com/danielhkuo/vote-tally/models"
	"github.com/danielhkuo/vote-tally/store"
)

// ErrNotConfirmed is returned when a removal was not explicitly confirmed.
var ErrNotConfirmed = errors.New("removal not confirmed")

// RosterStore is the slice of the record store the roster needs.
type RosterStore interface {
	Insert(ctx context.Context, name string, category *string) (models.Candidate, error)
	UpdateDescription(ctx context.Context, id int64, description string) (models.Candidate, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, order store.Order) ([]models.Candidate, error)
}

// Confirmation is the human answer to "are you sure?".
type Confirmation bool

const (
	Unconfirmed Confirmation = false
	Confirmed   Confirmation = true
)

type AddRequest struct {
	Name        string
	Category    string
	Description string
}

// AddResult is a qualified success: the candidate exists even when
// DescriptionErr is set.
type AddResult struct {
	Candidate      models.Candidate
	DescriptionErr error
}

// Service adds and removes candidates.
type Service struct {
	store   RosterStore
	metrics *metrics.Metrics
}

func NewService(store RosterStore, m *metrics.Metrics) *Service {
	return &Service{store: store, metrics: m}
}

// Validate checks an add request without touching the store.
func Validate(req AddRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperr.Validation("name", "please enter a candidate name")
	}
	if req.Category == "" {
		return apperr.Validation("category", "please select a position")
	}
	if !models.ValidCategory(req.Category) {
		return apperr.Validation("category", "unknown position "+req.Category)
	}
	return nil
}

// NormalizeName trims name and puts it in NFC form so a name typed with
// combining accents matches the same name typed precomposed.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// AddCandidate inserts a candidate with zero votes, then attaches the
// description in a second, best-effort step.
func (s *Service) AddCandidate(ctx context.Context, req AddRequest) (AddResult, error) {
	if err := Validate(req); err != nil {
		return AddResult{}, err
	}

	name := NormalizeName(req.Name)
	category := req.Category
	c, err := s.store.Insert(ctx, name, &category)
	if err != nil {
		slog.Error("failed to insert candidate", "error", err, "name", name)
		s.metrics.IncStoreError("write")
		return AddResult{}, err
	}
	s.metrics.IncCandidatesAdded()
	slog.Info("candidate added", "candidate_id", c.ID, "name", name, "category", category)

	res := AddResult{Candidate: c}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return res, nil
	}

	updated, err := s.store.UpdateDescription(ctx, c.ID, description)
	if err != nil {
		// Non-fatal: the candidate exists, only the description is missing
		slog.Warn("description update failed, candidate was added", "error", err, "candidate_id", c.ID)
		s.metrics.IncStoreError("write")
		res.DescriptionErr = err
		return res, nil
	}
	res.Candidate = updated
	return res, nil
}

// RemoveResult carries the roster fetched right after a delete. The delete
// succeeded even when RefreshErr is set.
type RemoveResult struct {
	Candidates []models.Candidate
	RefreshErr error
}

// RemoveCandidate deletes a candidate once confirmed and refreshes the
// roster in admin order. Audit entries for it are kept.
func (s *Service) RemoveCandidate(ctx context.Context, id int64, confirm Confirmation) (RemoveResult, error) {
	if confirm != Confirmed {
		return RemoveResult{}, ErrNotConfirmed
	}

	if err := s.store.Delete(ctx, id); err != nil {
		slog.Error("failed to remove candidate", "error", err, "candidate_id", id)
		s.metrics.IncStoreError("write")
		return RemoveResult{}, err
	}
	s.metrics.IncCandidatesRemoved()
	slog.Info("candidate removed", "candidate_id", id)

	candidates, err := s.store.List(ctx, store.OrderCategoryVotes)
	if err != nil {
		slog.Warn("failed to refresh candidates after removal", "error", err)
		s.metrics.IncStoreError("read")
		return RemoveResult{RefreshErr: err}, nil
	}
	return RemoveResult{Candidates: candidates}, nil
}
