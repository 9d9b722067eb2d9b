// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the TaskGate API server.

TaskGate routes verified human traffic to a rotating pool of
destination sites. Each completed assessment is assigned a destination
under per-site quotas and priority weights; the visitor must wait out
a dwell countdown on the destination before a one-time code is
revealed, and the assessment results unlock only when that code is
verified. One live task per device fingerprint at a time.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... go run main.go

Or with flags:

	go run main.go -p 5000 -d "postgres://..."

A local .env file is loaded automatically when present.

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string

Optional settings:

  - PORT (-p): Server port (default: 5000)
  - TASK_TTL_MINUTES (-task-ttl): Task lifetime (default: 30)
  - DWELL_SECONDS (-dwell): Countdown before code reveal (default: 60)
  - SWEEP_INTERVAL_MINUTES (-sweep-interval): Expiry sweep period (default: 5, 0 disables)
  - BYPASS_CODE (-bypass-code): Demo-only bypass code (default: disabled)
  - SEED_FILE (-seed): YAML site seed file

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (assignment, countdown, verification, sites, sessions)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: ID, code, and site-key generation
  - db: Schema creation, site seeding, expiry sweep
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
