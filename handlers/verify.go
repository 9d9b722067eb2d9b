// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/taskgate/cliparse"
	"github.com/danielhkuo/taskgate/middleware"
	"github.com/danielhkuo/taskgate/models"
)

type VerifyHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVerifyHandler(db *sql.DB, cfg cliparse.Config) *VerifyHandler {
	return &VerifyHandler{db: db, cfg: cfg}
}

// Verify handles POST /codes/verify
// Validates a submitted code against the device's live task, completes
// the task, unlocks the linked session, and settles the site's quota.
func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyCodeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "code is required")
		return
	}
	if req.Fingerprint == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "fingerprint is required")
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))

	// The bypass is a demo affordance: it only exists when configured,
	// and it still requires the caller to own a live in_progress task.
	bypass := h.cfg.BypassCode != "" && strings.EqualFold(code, h.cfg.BypassCode)

	var taskID, siteID, taskSessionID string
	var err error
	if bypass {
		err = h.db.QueryRow(`
			SELECT id, site_id, session_id FROM task
			WHERE fingerprint = $1 AND status = 'in_progress' AND expires_at > NOW()
			ORDER BY created_at DESC LIMIT 1
		`, req.Fingerprint).Scan(&taskID, &siteID, &taskSessionID)
	} else {
		err = h.db.QueryRow(`
			SELECT id, site_id, session_id FROM task
			WHERE fingerprint = $1 AND UPPER(code) = $2 AND status = 'in_progress' AND expires_at > NOW()
			ORDER BY created_at DESC LIMIT 1
		`, req.Fingerprint, code).Scan(&taskID, &siteID, &taskSessionID)
	}

	if err == sql.ErrNoRows {
		h.classifyMiss(w, req.Fingerprint, code, bypass)
		return
	}
	if err != nil {
		slog.Error("failed to query task for verification", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = taskSessionID
	}

	// Completion, unlock, and quota settle as one atomic unit. The
	// conditional status flip is the serialization point: a concurrent
	// retry for the same task updates zero rows and changes nothing.
	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE task SET status = 'completed', verified_at = NOW()
		WHERE id = $1 AND status = 'in_progress'
	`, taskID)
	if err != nil {
		slog.Error("failed to complete task", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	rows, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read update result", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if rows == 0 {
		// A concurrent submission completed it between our read and
		// this write. Idempotent success; side effects already applied.
		middleware.JSONResponse(w, http.StatusOK, models.VerifyCodeResponse{
			Status:   models.VerifyAlreadyVerified,
			TestKind: h.testKindOf(sessionID),
		})
		return
	}

	var testKind string
	err = tx.QueryRow(`
		UPDATE session SET unlocked = TRUE, status = 'completed', completed_at = NOW()
		WHERE id = $1
		RETURNING test_kind
	`, sessionID).Scan(&testKind)
	if err == sql.ErrNoRows {
		// Session purged or never existed; the verification still counts.
		testKind = "iq"
	} else if err != nil {
		slog.Error("failed to unlock session", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Single-statement conditional decrement: the quota floor holds
	// even under concurrent verifications for the same site.
	_, err = tx.Exec(`
		UPDATE site
		SET total_completed = total_completed + 1,
		    remaining_quota = CASE
		        WHEN quota > 0 AND remaining_quota > 0 THEN remaining_quota - 1
		        ELSE remaining_quota
		    END
		WHERE id = $1
	`, siteID)
	if err != nil {
		slog.Error("failed to settle site quota", "error", err, "site_id", siteID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit verification", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("code verified", "task_id", taskID, "site_id", siteID, "session_id", sessionID, "bypass", bypass)

	middleware.JSONResponse(w, http.StatusOK, models.VerifyCodeResponse{
		Status:   models.VerifyVerified,
		TestKind: testKind,
	})
}

// classifyMiss distinguishes replay, premature, and plain-wrong
// submissions once no in_progress task matched.
func (h *VerifyHandler) classifyMiss(w http.ResponseWriter, fingerprint, code string, bypass bool) {
	codeMatch := `UPPER(code) = $2`
	args := []interface{}{fingerprint, code}
	if bypass {
		// Bypass ignores the stored code entirely.
		codeMatch = `$2 = $2`
	}

	var sessionID string
	err := h.db.QueryRow(`
		SELECT session_id FROM task
		WHERE fingerprint = $1 AND `+codeMatch+` AND status = 'completed'
		ORDER BY created_at DESC LIMIT 1
	`, args...).Scan(&sessionID)
	if err == nil {
		// Double-click or repeated submit after success is not an error.
		middleware.JSONResponse(w, http.StatusOK, models.VerifyCodeResponse{
			Status:   models.VerifyAlreadyVerified,
			TestKind: h.testKindOf(sessionID),
		})
		return
	}
	if err != sql.ErrNoRows {
		slog.Error("failed to query completed task", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Pending tasks have no code yet (lazy generation), so no submitted
	// value can match one; the device owning a live pending task gets
	// told the countdown has not finished rather than "invalid code".
	var pendingExists bool
	err = h.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM task
			WHERE fingerprint = $1 AND status = 'pending' AND expires_at > NOW()
		)
	`, fingerprint).Scan(&pendingExists)
	if err != nil {
		slog.Error("failed to query pending task", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if pendingExists {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Countdown not finished on the destination page")
		return
	}

	middleware.ErrorResponse(w, http.StatusNotFound, "Invalid code or not issued to this device")
}

func (h *VerifyHandler) testKindOf(sessionID string) string {
	testKind := "iq"
	if sessionID == "" {
		return testKind
	}
	err := h.db.QueryRow(`SELECT test_kind FROM session WHERE id = $1`, sessionID).Scan(&testKind)
	if err != nil && err != sql.ErrNoRows {
		slog.Error("failed to query session kind", "error", err, "session_id", sessionID)
	}
	return testKind
}
