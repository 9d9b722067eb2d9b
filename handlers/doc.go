// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the TaskGate API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - TaskHandler: Assignment, widget check, countdown, and code reveal
  - VerifyHandler: Code verification and session unlock
  - SessionHandler: Assessment session surface and unlock gate
  - SiteHandler: Destination site registry (admin)

Handlers are created via constructor functions that accept *sql.DB and Config:

	taskHandler := handlers.NewTaskHandler(db, cfg)

# Task Lifecycle

Tasks progress through: pending → in_progress → completed (or expired)

	POST /tasks/assign          → Assign (reuse live task or weighted pick)
	GET  /tasks/check           → Check (widget probe)
	POST /tasks/start-countdown → StartCountdown (generates the code)
	GET  /tasks/{id}/code       → RevealCode (after the dwell interval)
	POST /codes/verify          → Verify (completes + unlocks + settles quota)

At most one live task exists per device fingerprint; the partial unique
index in the db package enforces it under concurrency.

# Weighted Selection

Destination choice is a cumulative-priority scan over the eligible site
set, implemented in weighted.go:

	site := pickRandomSite(eligible)

Eligibility (active, quota not exhausted) is re-filtered on every
assignment; nothing is cached. Priority <= 0 is clamped to a small
epsilon so zero-priority sites stay reachable.

# Countdown Semantics

The server never holds a timer. StartCountdown stamps
code_generated_at; RevealCode compares wall clocks against the
configured dwell and answers too_early with the remaining seconds.
Restarts lose nothing.

# Session Unlock

	POST /sessions              → Create
	POST /sessions/{id}/submit  → Submit (score from the scoring service)
	GET  /sessions/{id}         → Get (403 until verification unlocks it)
*/
package handlers
