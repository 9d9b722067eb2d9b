// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/danielhkuo/taskgate/auth"
	"github.com/danielhkuo/taskgate/middleware"
	"github.com/danielhkuo/taskgate/models"
)

// Check handles GET /tasks/check
// Read-only probe used by the destination-side widget to decide
// whether to show its own UI.
func (h *TaskHandler) Check(w http.ResponseWriter, r *http.Request) {
	fingerprint := r.URL.Query().Get("fingerprint")
	siteKey := r.URL.Query().Get("site_key")
	if fingerprint == "" || siteKey == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "fingerprint and site_key are required")
		return
	}

	var siteID string
	err := h.db.QueryRow(`
		SELECT id FROM site WHERE site_key = $1 AND is_active = TRUE
	`, siteKey).Scan(&siteID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Site not found or inactive")
		return
	}
	if err != nil {
		slog.Error("failed to query site", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var taskID, status string
	var code sql.NullString
	var revealedAt sql.NullTime
	err = h.db.QueryRow(`
		SELECT id, status, code, code_revealed_at
		FROM task
		WHERE fingerprint = $1 AND site_id = $2
		  AND status IN ('pending', 'in_progress')
		  AND expires_at > NOW()
	`, fingerprint, siteID).Scan(&taskID, &status, &code, &revealedAt)
	if err == sql.ErrNoRows {
		middleware.JSONResponse(w, http.StatusOK, models.CheckTaskResponse{HasTask: false})
		return
	}
	if err != nil {
		slog.Error("failed to query task", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := models.CheckTaskResponse{
		HasTask: true,
		TaskID:  &taskID,
		Status:  &status,
	}
	// The code rides along only once it has already been revealed, so
	// the widget can restore its state without shortcutting the dwell.
	if code.Valid && revealedAt.Valid {
		resp.Code = &code.String
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// StartCountdown handles POST /tasks/start-countdown
// Moves a pending task to in_progress and generates its code.
// Idempotent: repeat calls neither regenerate the code nor reset the
// dwell timer, so restarting the widget gains nothing.
func (h *TaskHandler) StartCountdown(w http.ResponseWriter, r *http.Request) {
	var req models.StartCountdownRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.TaskID == "" || req.Fingerprint == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "task_id and fingerprint are required")
		return
	}

	code, err := auth.GenerateTaskCode()
	if err != nil {
		slog.Error("failed to generate code", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start countdown")
		return
	}

	// COALESCE keeps the existing code and timestamp on repeat calls.
	res, err := h.db.Exec(`
		UPDATE task
		SET status = 'in_progress',
		    code = COALESCE(code, $1),
		    code_generated_at = COALESCE(code_generated_at, NOW())
		WHERE id = $2 AND fingerprint = $3
		  AND status IN ('pending', 'in_progress')
		  AND expires_at > NOW()
	`, code, req.TaskID, req.Fingerprint)
	if err != nil {
		slog.Error("failed to start countdown", "error", err)
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
		// Missing, expired, or another device's task - all the same
		// answer, so existence never leaks across fingerprints.
		middleware.ErrorResponse(w, http.StatusNotFound, "Task not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.StartCountdownResponse{
		CountdownSeconds: int(h.cfg.Dwell.Seconds()),
	})
}

// RevealCode handles GET /tasks/{id}/code
// Returns the code once the dwell interval has elapsed.
func (h *TaskHandler) RevealCode(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")
	fingerprint := r.URL.Query().Get("fingerprint")
	if taskID == "" || fingerprint == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "task id and fingerprint are required")
		return
	}

	var status string
	var code sql.NullString
	var generatedAt sql.NullTime
	err := h.db.QueryRow(`
		SELECT status, code, code_generated_at
		FROM task
		WHERE id = $1 AND fingerprint = $2 AND expires_at > NOW()
	`, taskID, fingerprint).Scan(&status, &code, &generatedAt)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		slog.Error("failed to query task", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.TaskInProgress || !code.Valid || !generatedAt.Valid {
		middleware.ErrorResponse(w, http.StatusConflict, "Countdown has not been started")
		return
	}

	elapsed := time.Since(generatedAt.Time)
	if elapsed < h.cfg.Dwell {
		remaining := int(math.Ceil((h.cfg.Dwell - elapsed).Seconds()))
		middleware.JSONResponse(w, http.StatusOK, models.RevealCodeResponse{
			TooEarly:         true,
			RemainingSeconds: remaining,
		})
		return
	}

	// First reveal stamps the timestamp; later reveals keep it.
	_, err = h.db.Exec(`
		UPDATE task SET code_revealed_at = COALESCE(code_revealed_at, NOW()) WHERE id = $1
	`, taskID)
	if err != nil {
		slog.Error("failed to stamp code reveal", "error", err, "task_id", taskID)
	}

	middleware.JSONResponse(w, http.StatusOK, models.RevealCodeResponse{Code: code.String})
}
