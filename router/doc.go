// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the TaskGate API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Task engine (public):

	POST /tasks/assign          - Assign or reuse the device's task
	GET  /tasks/check           - Widget probe for a live task
	POST /tasks/start-countdown - Begin the dwell countdown
	GET  /tasks/{id}/code       - Reveal the code after the dwell

Verification:

	POST /codes/verify - Verify a code, unlock the session

Sessions:

	POST /sessions              - Create session
	POST /sessions/{id}/submit  - Record score, mark submitted
	GET  /sessions/{id}         - Results (403 until unlocked)

Site registry (admin):

	GET    /sites               - List sites
	POST   /sites               - Create site
	GET    /sites/key/{siteKey} - Widget config lookup
	PUT    /sites/{id}          - Partial update
	DELETE /sites/{id}          - Delete site
	GET    /sites/{id}/stats    - Visit/completion counters

# Handler Initialization

The router creates handler instances with dependency injection:

	taskHandler := handlers.NewTaskHandler(db, cfg)
	verifyHandler := handlers.NewVerifyHandler(db, cfg)
	sessionHandler := handlers.NewSessionHandler(db, cfg)
	siteHandler := handlers.NewSiteHandler(db, cfg)

All handlers receive the database connection and configuration.
*/
package router
