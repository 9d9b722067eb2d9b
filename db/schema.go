// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Destination sites
CREATE TABLE IF NOT EXISTS site (
    id TEXT PRIMARY KEY,
    site_key TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    domain TEXT NOT NULL,
    url TEXT NOT NULL DEFAULT '',
    search_keyword TEXT NOT NULL DEFAULT '',
    instruction TEXT NOT NULL DEFAULT 'Visit the website and get the verification code',
    target_element TEXT NOT NULL DEFAULT '#traffic-widget',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    quota INTEGER NOT NULL DEFAULT 0 CHECK (quota >= 0),
    remaining_quota INTEGER NOT NULL DEFAULT 0 CHECK (remaining_quota >= 0),
    priority INTEGER NOT NULL DEFAULT 1 CHECK (priority BETWEEN 0 AND 100),
    total_visits INTEGER NOT NULL DEFAULT 0,
    total_completed INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_site_is_active ON site(is_active);

-- Assessment sessions (written by the scoring service, unlocked here)
CREATE TABLE IF NOT EXISTS session (
    id TEXT PRIMARY KEY,
    test_kind TEXT NOT NULL DEFAULT 'iq',
    fingerprint TEXT NOT NULL,
    score INTEGER NOT NULL DEFAULT 0,
    max_score INTEGER NOT NULL DEFAULT 100,
    percentile INTEGER NOT NULL DEFAULT 50,
    status TEXT NOT NULL DEFAULT 'in_progress' CHECK (status IN ('in_progress', 'submitted', 'completed')),
    unlocked BOOLEAN NOT NULL DEFAULT FALSE,
    started_at TIMESTAMP NOT NULL DEFAULT NOW(),
    submitted_at TIMESTAMP,
    completed_at TIMESTAMP,
    expires_at TIMESTAMP NOT NULL DEFAULT (NOW() + INTERVAL '24 hours')
);

CREATE INDEX IF NOT EXISTS idx_session_fingerprint ON session(fingerprint);
CREATE INDEX IF NOT EXISTS idx_session_expires_at ON session(expires_at);

-- Tasks
CREATE TABLE IF NOT EXISTS task (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    site_id TEXT NOT NULL REFERENCES site(id) ON DELETE CASCADE,
    fingerprint TEXT NOT NULL,
    code TEXT,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'in_progress', 'completed', 'expired')),
    code_generated_at TIMESTAMP,
    code_revealed_at TIMESTAMP,
    verified_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMP NOT NULL
);

-- At most one live task per device. Assignment inserts race against
-- each other on this index and fall back to reusing the winner's row.
CREATE UNIQUE INDEX IF NOT EXISTS idx_task_live_fingerprint
    ON task(fingerprint) WHERE status IN ('pending', 'in_progress');

CREATE INDEX IF NOT EXISTS idx_task_session_id ON task(session_id);
CREATE INDEX IF NOT EXISTS idx_task_code ON task(code);
CREATE INDEX IF NOT EXISTS idx_task_status ON task(status);
CREATE INDEX IF NOT EXISTS idx_task_expires_at ON task(expires_at);
`
