// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

// ExpireStaleTasks flips pending/in_progress tasks past their deadline
// to expired. Completed tasks are never touched. Every task read also
// filters on expires_at, so this is storage hygiene, not correctness.
func ExpireStaleTasks(db *sql.DB) (int64, error) {
	res, err := db.Exec(`
		UPDATE task SET status = 'expired'
		WHERE status IN ('pending', 'in_progress') AND expires_at <= NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("expire stale tasks: %w", err)
	}
	return res.RowsAffected()
}

// PurgeExpiredSessions deletes sessions past their retention window.
// Their tasks cascade.
func PurgeExpiredSessions(db *sql.DB) (int64, error) {
	res, err := db.Exec(`DELETE FROM session WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	return res.RowsAffected()
}

// RunSweeper periodically expires stale tasks and purges old sessions
// until ctx is cancelled. An immediate pass runs on startup so a
// restarted instance doesn't wait a full interval to clean up.
func RunSweeper(ctx context.Context, db *sql.DB, interval time.Duration) {
	sweep := func() {
		tasks, err := ExpireStaleTasks(db)
		if err != nil {
			slog.Error("expiry sweep failed", "error", err)
			return
		}
		sessions, err := PurgeExpiredSessions(db)
		if err != nil {
			slog.Error("session purge failed", "error", err)
			return
		}
		if tasks > 0 || sessions > 0 {
			slog.Info("expiry sweep completed",
				"tasks_expired", humanize.Comma(tasks),
				"sessions_purged", humanize.Comma(sessions),
			)
		}
	}

	sweep()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sweep()
		case <-ctx.Done():
			return
		}
	}
}
