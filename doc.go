// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the vote-tally server.

vote-tally is a live election dashboard. A public page shows ranked results
per category; a password-gated admin page adjusts vote counts and manages
candidates. Every write is pushed to connected viewers through a Redis change
feed, with a 30 second full refresh as a fallback.

# Starting the Server

	DATABASE_URL=file:tally.db CHANGEFEED_URL=redis://localhost:6379/0 go run .

Or with flags:

	go run . -p 3318 -d "postgres://..." -t postgres -changefeed redis://localhost:6379/0

A .env file in the working directory is loaded when present.

# Configuration

Required settings:

  - DATABASE_URL (-d): record store connection string
  - CHANGEFEED_URL (-changefeed): Redis URL for change notifications

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - ADMIN_USERNAME, ADMIN_PASSWORD: admin login (default: admin / admin6108)
  - ADMIN_PASSWORD_HASH: optional bcrypt hash; replaces ADMIN_PASSWORD when set
  - REFRESH_INTERVAL (-refresh): live view full refresh (default: 30s)

# Architecture

  - handlers: REST and websocket handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, admin guard, JSON helpers
  - tally: vote mutation with cooldown, clamping and audit log
  - roster: adding and removing candidates
  - livesync: per-connection view state kept in sync with the store
  - present: grouping, ranking and percentages
  - store: candidate and audit persistence, publishing change notifications
  - feed: change notification brokers (Redis, in-memory)
  - auth: admin credential check and per-session gate
  - metrics: Prometheus collectors
  - apperr: error types shared across packages
  - models: domain, request and response types
  - db: connection and schema creation
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
