// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/danielhkuo/vote-tally/apperr"
	"github.com/danielhkuo/vote-tally/middleware"
	"github.com/danielhkuo/vote-tally/roster"
)

// statusFor maps an operation error to an HTTP status and the message shown
// to the user. fallback is used for store failures.
func statusFor(err error, fallback string) (int, string) {
	var v *apperr.ValidationError
	switch {
	case errors.As(err, &v):
		return http.StatusBadRequest, v.Message
	case errors.Is(err, roster.ErrNotConfirmed):
		return http.StatusBadRequest, "Removal must be confirmed"
	case apperr.IsNotFound(err):
		return http.StatusNotFound, "Candidate not found"
	default:
		return http.StatusInternalServerError, fallback
	}
}

func writeError(w http.ResponseWriter, err error, fallback string) {
	status, msg := statusFor(err, fallback)
	middleware.ErrorResponse(w, status, msg)
}

// candidateID reads the {id} path value.
func candidateID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, apperr.Validation("id", "invalid candidate id")
	}
	return id, checkCandidateID(id)
}

func checkCandidateID(id int64) error {
	if id <= 0 {
		return apperr.Validation("id", "invalid candidate id")
	}
	return nil
}
