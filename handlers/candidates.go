// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/vote-tally/livesync"
	"github.com/danielhkuo/vote-tally/middleware"
	"github.com/danielhkuo/vote-tally/models"
	"github.com/danielhkuo/vote-tally/present"
	"github.com/danielhkuo/vote-tally/store"
)

// CandidateHandler serves the read-only candidate views.
type CandidateHandler struct {
	store *store.Store
}

func NewCandidateHandler(st *store.Store) *CandidateHandler {
	return &CandidateHandler{store: st}
}

// ListCandidates handles GET /candidates?view=public|admin
// Public view is ordered by votes, admin view by category then votes.
func (h *CandidateHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	view, ok := parseView(r.URL.Query().Get("view"))
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "view must be public or admin")
		return
	}

	candidates, err := h.store.List(r.Context(), view.Order())
	if err != nil {
		slog.Error("failed to list candidates", "error", err, "view", view)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load candidates")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CandidatesResponse{
		Candidates: candidates,
		FetchedAt:  time.Now().UTC(),
	})
}

// GetResults handles GET /results?view=public|admin
// Candidates are grouped by category and ranked. The public view cuts each
// group to the top four unless all=true. The admin view lists every
// candidate by name; ranks still follow votes.
func (h *CandidateHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	view, ok := parseView(r.URL.Query().Get("view"))
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "view must be public or admin")
		return
	}

	candidates, err := h.store.List(r.Context(), store.OrderVotes)
	if err != nil {
		slog.Error("failed to list candidates for results", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load results")
		return
	}

	opts := present.Options{TopN: present.DefaultTopN}
	if view == livesync.Admin {
		opts = present.Options{ByName: true}
	} else if r.URL.Query().Get("all") == "true" {
		opts.TopN = 0
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{
		Groups:    present.Group(candidates, opts),
		FetchedAt: time.Now().UTC(),
	})
}

func parseView(s string) (livesync.View, bool) {
	switch livesync.View(s) {
	case "", livesync.Public:
		return livesync.Public, true
	case livesync.Admin:
		return livesync.Admin, true
	default:
		return "", false
	}
}
