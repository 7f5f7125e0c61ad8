// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the vote-tally API.

# Route Registration

	mux := router.NewRouter(db, cfg, broker, prometheus.NewRegistry())

# Endpoints

Operational:

	GET /health   - Database ping
	GET /metrics  - Prometheus metrics
	GET /         - Banner

Public:

	GET /candidates?view=public|admin - Full candidate list in view order
	GET /results[?all=true]           - Ranked groups, top four unless all
	GET /results?view=admin           - Every candidate per group, by name
	GET /live                         - Websocket live view

Admin (HTTP Basic on every request, except login and the live socket):

	POST   /admin/login                         - Check credentials
	POST   /admin/candidates                    - Add candidate
	DELETE /admin/candidates/{id}               - Remove (needs X-Confirm-Remove: true)
	POST   /admin/candidates/{id}/votes         - Apply {delta}
	POST   /admin/candidates/{id}/votes/custom  - Apply {amount, mode}
	GET    /admin/live                          - Websocket admin session
*/
package router
