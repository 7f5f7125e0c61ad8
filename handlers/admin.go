// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/vote-tally/auth"
	"github.com/danielhkuo/vote-tally/metrics"
	"github.com/danielhkuo/vote-tally/middleware"
	"github.com/danielhkuo/vote-tally/models"
	"github.com/danielhkuo/vote-tally/roster"
	"github.com/danielhkuo/vote-tally/store"
	"github.com/danielhkuo/vote-tally/tally"
)

const (
	auditWarning       = "Votes saved, but the change could not be logged"
	descriptionWarning = "Candidate added, but the description could not be saved"
	refreshWarning     = "Candidate removed, but the list could not be refreshed"
)

// AdminHandler serves the REST admin surface. Every route except Login sits
// behind middleware.RequireAdmin. The REST surface shares one vote cooldown.
type AdminHandler struct {
	auth   auth.Authenticator
	tally  *tally.Service
	roster *roster.Service
}

func NewAdminHandler(st *store.Store, a auth.Authenticator, m *metrics.Metrics) *AdminHandler {
	return &AdminHandler{
		auth:   a,
		tally:  tally.NewService(st, tally.WithMetrics(m)),
		roster: roster.NewService(st, m),
	}
}

// Login handles POST /admin/login
// Checks a username/password pair. Nothing is stored; later requests send
// the same pair as HTTP Basic credentials.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !h.auth.Authenticate(auth.Credentials{Username: req.Username, Password: req.Password}) {
		slog.Warn("admin login failed", "username", req.Username, "remote", middleware.ClientIP(r))
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{Authenticated: true})
}

// ChangeVotes handles POST /admin/candidates/{id}/votes
// Body {"delta": n}. The new count is computed from the stored count.
func (h *AdminHandler) ChangeVotes(w http.ResponseWriter, r *http.Request) {
	id, err := candidateID(r)
	if err != nil {
		writeError(w, err, "")
		return
	}

	var req models.VoteDeltaRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Delta == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "delta must not be zero")
		return
	}

	res, err := h.tally.ApplyDelta(r.Context(), id, req.Delta)
	if err != nil {
		writeError(w, err, tally.UserMessage(err))
		return
	}
	middleware.JSONResponse(w, http.StatusOK, voteResponse(res))
}

// CustomVotes handles POST /admin/candidates/{id}/votes/custom
// Body {"amount": "25", "mode": "add"|"subtract"}. The amount is free text.
func (h *AdminHandler) CustomVotes(w http.ResponseWriter, r *http.Request) {
	id, err := candidateID(r)
	if err != nil {
		writeError(w, err, "")
		return
	}

	var req models.CustomVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	res, err := h.tally.ApplyCustom(r.Context(), id, req.Amount, req.Mode)
	if err != nil {
		writeError(w, err, tally.UserMessage(err))
		return
	}
	middleware.JSONResponse(w, http.StatusOK, voteResponse(res))
}

// AddCandidate handles POST /admin/candidates
func (h *AdminHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	var req models.AddCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	res, err := h.roster.AddCandidate(r.Context(), roster.AddRequest{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err, "Failed to add candidate")
		return
	}

	resp := models.AddCandidateResponse{Candidate: res.Candidate}
	if res.DescriptionErr != nil {
		resp.Warning = descriptionWarning
	}
	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// RemoveCandidate handles DELETE /admin/candidates/{id}
// The removal must be confirmed with X-Confirm-Remove: true or ?confirm=true.
// Returns the refreshed roster in admin order.
func (h *AdminHandler) RemoveCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := candidateID(r)
	if err != nil {
		writeError(w, err, "")
		return
	}

	confirm := roster.Confirmation(
		r.Header.Get("X-Confirm-Remove") == "true" || r.URL.Query().Get("confirm") == "true")

	res, err := h.roster.RemoveCandidate(r.Context(), id, confirm)
	if err != nil {
		writeError(w, err, "Failed to remove candidate")
		return
	}
	h.tally.Debouncer().Forget(id)

	resp := models.RemoveCandidateResponse{Removed: id, Candidates: res.Candidates}
	if res.RefreshErr != nil {
		resp.Warning = refreshWarning
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

func voteResponse(res tally.Result) models.VoteResponse {
	if res.Debounced {
		return models.VoteResponse{Debounced: true}
	}
	c := res.Candidate
	resp := models.VoteResponse{Candidate: &c}
	if res.AuditErr != nil {
		resp.Warning = auditWarning
	}
	return resp
}
