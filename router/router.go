// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/vote-tally/auth"
	"github.com/danielhkuo/vote-tally/cliparse"
	"github.com/danielhkuo/vote-tally/feed"
	"github.com/danielhkuo/vote-tally/handlers"
	"github.com/danielhkuo/vote-tally/metrics"
	"github.com/danielhkuo/vote-tally/middleware"
	"github.com/danielhkuo/vote-tally/store"
)

// NewRouter wires every route. broker carries the change feed: the store
// publishes to it and live sessions subscribe to it. Metrics are registered
// on reg and served from it.
func NewRouter(db *sql.DB, cfg cliparse.Config, broker feed.Broker, reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()

	m := metrics.New(reg)
	st := store.New(db, broker)
	authenticator := auth.New(cfg.AdminUsername, cfg.AdminPassword, cfg.AdminHash)

	// Initialize handlers
	candidateHandler := handlers.NewCandidateHandler(st)
	adminHandler := handlers.NewAdminHandler(st, authenticator, m)
	liveHandler := handlers.NewLiveHandler(st, broker, authenticator, m, cfg)

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(authenticator, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Public views
	mux.HandleFunc("GET /candidates", middleware.WithLogging(candidateHandler.ListCandidates))
	mux.HandleFunc("GET /results", middleware.WithLogging(candidateHandler.GetResults))
	mux.HandleFunc("GET /live", middleware.WithLogging(liveHandler.Public))

	// Admin operations (HTTP Basic on every request)
	mux.HandleFunc("POST /admin/login", middleware.WithLogging(adminHandler.Login))
	mux.HandleFunc("POST /admin/candidates", admin(adminHandler.AddCandidate))
	mux.HandleFunc("DELETE /admin/candidates/{id}", admin(adminHandler.RemoveCandidate))
	mux.HandleFunc("POST /admin/candidates/{id}/votes", admin(adminHandler.ChangeVotes))
	mux.HandleFunc("POST /admin/candidates/{id}/votes/custom", admin(adminHandler.CustomVotes))

	// Admin live session logs in over the socket itself
	mux.HandleFunc("GET /admin/live", middleware.WithLogging(liveHandler.Admin))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("vote-tally API v1"))
	})

	return mux
}
