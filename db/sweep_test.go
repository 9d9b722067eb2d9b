// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"testing"
	"time"
)

func seedSweepFixture(t *testing.T, conn *sql.DB) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO site (id, site_key, name, domain, quota, remaining_quota, priority)
		VALUES ('site-1', 'key-1', 'Sweep Site', 'sweep.example.com', 0, 0, 1)
	`)
	if err != nil {
		t.Fatalf("Failed to insert site: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO session (id, test_kind, fingerprint, expires_at)
		VALUES ('sess-live', 'iq', 'fp-live', NOW() + INTERVAL '1 hour'),
		       ('sess-old', 'iq', 'fp-old', NOW() - INTERVAL '1 hour')
	`)
	if err != nil {
		t.Fatalf("Failed to insert sessions: %v", err)
	}
}

func TestExpireStaleTasks(t *testing.T) {
	conn := openTestDB(t)
	defer conn.Close()

	seedSweepFixture(t, conn)

	_, err := conn.Exec(`
		INSERT INTO task (id, session_id, site_id, fingerprint, status, expires_at)
		VALUES ('t-stale-pending', 'sess-live', 'site-1', 'fp-a', 'pending', NOW() - INTERVAL '1 minute'),
		       ('t-stale-progress', 'sess-live', 'site-1', 'fp-b', 'in_progress', NOW() - INTERVAL '1 minute'),
		       ('t-fresh', 'sess-live', 'site-1', 'fp-c', 'pending', NOW() + INTERVAL '10 minutes'),
		       ('t-done', 'sess-live', 'site-1', 'fp-d', 'completed', NOW() - INTERVAL '1 minute')
	`)
	if err != nil {
		t.Fatalf("Failed to insert tasks: %v", err)
	}

	flipped, err := ExpireStaleTasks(conn)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if flipped != 2 {
		t.Errorf("Expected 2 tasks expired, got %d", flipped)
	}

	statuses := map[string]string{}
	rows, err := conn.Query(`SELECT id, status FROM task`)
	if err != nil {
		t.Fatalf("Failed to query tasks: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, status string
		if err := rows.Scan(&id, &status); err != nil {
			t.Fatalf("Failed to scan task: %v", err)
		}
		statuses[id] = status
	}

	if statuses["t-stale-pending"] != "expired" {
		t.Errorf("Expected stale pending task expired, got %s", statuses["t-stale-pending"])
	}
	if statuses["t-stale-progress"] != "expired" {
		t.Errorf("Expected stale in_progress task expired, got %s", statuses["t-stale-progress"])
	}
	if statuses["t-fresh"] != "pending" {
		t.Errorf("Fresh task should be untouched, got %s", statuses["t-fresh"])
	}
	if statuses["t-done"] != "completed" {
		t.Errorf("Completed task should never expire, got %s", statuses["t-done"])
	}

	// Second pass finds nothing
	flipped, err = ExpireStaleTasks(conn)
	if err != nil {
		t.Fatalf("Repeat sweep failed: %v", err)
	}
	if flipped != 0 {
		t.Errorf("Expected idempotent sweep, got %d flips", flipped)
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	conn := openTestDB(t)
	defer conn.Close()

	seedSweepFixture(t, conn)

	// Tasks of the purged session go with it
	_, err := conn.Exec(`
		INSERT INTO task (id, session_id, site_id, fingerprint, status, expires_at)
		VALUES ('t-of-old', 'sess-old', 'site-1', 'fp-old', 'completed', NOW() + INTERVAL '10 minutes')
	`)
	if err != nil {
		t.Fatalf("Failed to insert task: %v", err)
	}

	purged, err := PurgeExpiredSessions(conn)
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("Expected 1 session purged, got %d", purged)
	}

	var liveSessions, orphanTasks int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM session`).Scan(&liveSessions); err != nil {
		t.Fatalf("Failed to count sessions: %v", err)
	}
	if liveSessions != 1 {
		t.Errorf("Expected 1 surviving session, got %d", liveSessions)
	}
	if err := conn.QueryRow(`SELECT COUNT(*) FROM task WHERE session_id = 'sess-old'`).Scan(&orphanTasks); err != nil {
		t.Fatalf("Failed to count tasks: %v", err)
	}
	if orphanTasks != 0 {
		t.Errorf("Expected cascade to remove tasks, got %d", orphanTasks)
	}
}

func TestRunSweeperStopsOnCancel(t *testing.T) {
	conn := openTestDB(t)
	defer conn.Close()

	seedSweepFixture(t, conn)

	_, err := conn.Exec(`
		INSERT INTO task (id, session_id, site_id, fingerprint, status, expires_at)
		VALUES ('t-stale', 'sess-live', 'site-1', 'fp-x', 'pending', NOW() - INTERVAL '1 minute')
	`)
	if err != nil {
		t.Fatalf("Failed to insert task: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunSweeper(ctx, conn, time.Hour)
		close(done)
	}()

	// The startup pass runs before the first tick
	deadline := time.After(5 * time.Second)
	for {
		var status string
		if err := conn.QueryRow(`SELECT status FROM task WHERE id = 't-stale'`).Scan(&status); err != nil {
			t.Fatalf("Failed to query task: %v", err)
		}
		if status == "expired" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("Startup sweep never ran")
		case <-time.After(50 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Sweeper did not stop after cancel")
	}
}
