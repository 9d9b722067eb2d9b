// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles schema creation, site seeding, and the expiry sweep.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - site: Destination sites with priority weights, quotas, and counters
  - session: Assessment sessions awaiting results unlock
  - task: Per-device verification tasks with one-time codes

# Relationships

	session 1──* task
	site    1──* task

All foreign keys use ON DELETE CASCADE.

# The Live-Task Index

The partial unique index

	task(fingerprint) WHERE status IN ('pending', 'in_progress')

guarantees at most one live task per device at the store level.
Concurrent assignment inserts use ON CONFLICT DO NOTHING against it
and re-read the winner's row, so the engine never creates duplicates
even across multiple service instances.

# Site Seeding

SeedSites loads destinations from a YAML file at startup:

	sites:
	  - name: Example
	    domain: example.com
	    url: https://example.com
	    searchKeyword: example site
	    quota: 100
	    priority: 10

Idempotent per domain - existing sites are skipped.

# Expiry Sweep

Task reads always filter on expires_at, so the sweep is storage
hygiene rather than correctness:

	go db.RunSweeper(ctx, conn, cfg.SweepInterval)

Each pass flips stale pending/in_progress tasks to expired and purges
sessions past their retention window.
*/
package db
