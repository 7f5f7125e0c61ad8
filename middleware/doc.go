// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, client IP) and completion (status,
duration_ms). The wrapper supports hijacking so websocket upgrades work
through it.

# Admin Guard

	mux.HandleFunc("POST /admin/candidates", middleware.WithLogging(
		middleware.RequireAdmin(authenticator, h.AddCandidate)))

HTTP Basic credentials are checked on every request; a failure answers 401
with a WWW-Authenticate challenge.

# CORS Middleware

	server := http.Server{Handler: middleware.CORS(mux)}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.VoteDeltaRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
*/
package middleware
