// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/taskgate/cliparse"
	"github.com/danielhkuo/taskgate/middleware"
	"github.com/danielhkuo/taskgate/models"
)

type TaskHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewTaskHandler(db *sql.DB, cfg cliparse.Config) *TaskHandler {
	return &TaskHandler{db: db, cfg: cfg}
}

// Assign handles POST /tasks/assign
// Reuses the device's live task if one exists, otherwise picks a
// destination by weighted draw and creates a new pending task.
func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req models.AssignTaskRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Fingerprint == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "fingerprint is required")
		return
	}
	if req.SessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id is required")
		return
	}

	// The task row references the session
	var sessionExists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM session WHERE id = $1)`, req.SessionID).Scan(&sessionExists)
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !sessionExists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}

	// Stale live rows past their deadline still hold the live-task
	// index; flip them first so a fresh insert can go through.
	_, err = h.db.Exec(`
		UPDATE task SET status = 'expired'
		WHERE fingerprint = $1 AND status IN ('pending', 'in_progress') AND expires_at <= NOW()
	`, req.Fingerprint)
	if err != nil {
		slog.Error("failed to expire stale tasks", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Two passes: if the insert loses the live-task index race, the
	// second pass finds and reuses the winner's row.
	for attempt := 0; attempt < 2; attempt++ {
		taskID, site, found, err := h.findLiveTask(req.Fingerprint)
		if err != nil {
			slog.Error("failed to query live task", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if found {
			// Rebind to the current session so a device that retakes
			// the assessment keeps its destination and code.
			_, err = h.db.Exec(`UPDATE task SET session_id = $1 WHERE id = $2`, req.SessionID, taskID)
			if err != nil {
				slog.Error("failed to rebind task session", "error", err)
				middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
				return
			}

			slog.Info("task reused", "task_id", taskID, "site", site.Domain)
			middleware.JSONResponse(w, http.StatusOK, models.AssignTaskResponse{
				TaskID:     taskID,
				Reused:     true,
				TargetSite: targetSiteOf(site),
			})
			return
		}

		sites, err := h.eligibleSites()
		if err != nil {
			slog.Error("failed to query eligible sites", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if len(sites) == 0 {
			middleware.ErrorResponse(w, http.StatusConflict, "No eligible destination available")
			return
		}

		chosen := pickRandomSite(sites)
		taskID = uuid.NewString()

		// No code yet - it is generated lazily when the countdown
		// starts, so an abandoned task never consumes one.
		res, err := h.db.Exec(`
			INSERT INTO task (id, session_id, site_id, fingerprint, status, created_at, expires_at)
			VALUES ($1, $2, $3, $4, 'pending', NOW(), $5)
			ON CONFLICT (fingerprint) WHERE status IN ('pending', 'in_progress') DO NOTHING
		`, taskID, req.SessionID, chosen.ID, req.Fingerprint, time.Now().Add(h.cfg.TaskTTL))
		if err != nil {
			slog.Error("failed to insert task", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		rows, err := res.RowsAffected()
		if err != nil {
			slog.Error("failed to read insert result", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if rows == 0 {
			// A concurrent assign for the same fingerprint won; reuse its row.
			continue
		}

		_, err = h.db.Exec(`UPDATE site SET total_visits = total_visits + 1 WHERE id = $1`, chosen.ID)
		if err != nil {
			slog.Error("failed to increment site visits", "error", err, "site_id", chosen.ID)
		}

		slog.Info("task created", "task_id", taskID, "site", chosen.Domain, "fingerprint", req.Fingerprint)
		middleware.JSONResponse(w, http.StatusCreated, models.AssignTaskResponse{
			TaskID:     taskID,
			Reused:     false,
			TargetSite: targetSiteOf(chosen),
		})
		return
	}

	slog.Error("assignment gave up after losing the insert race twice", "fingerprint", req.Fingerprint)
	middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to assign task")
}

// findLiveTask returns the fingerprint's live task and its site, if any.
func (h *TaskHandler) findLiveTask(fingerprint string) (string, models.Site, bool, error) {
	var taskID string
	var site models.Site
	err := h.db.QueryRow(`
		SELECT t.id, s.id, s.name, s.domain, s.url, s.search_keyword, s.instruction
		FROM task t
		JOIN site s ON t.site_id = s.id
		WHERE t.fingerprint = $1
		  AND t.status IN ('pending', 'in_progress')
		  AND t.expires_at > NOW()
	`, fingerprint).Scan(&taskID, &site.ID, &site.Name, &site.Domain, &site.URL, &site.SearchKeyword, &site.Instruction)
	if err == sql.ErrNoRows {
		return "", models.Site{}, false, nil
	}
	if err != nil {
		return "", models.Site{}, false, err
	}
	return taskID, site, true, nil
}

// eligibleSites re-filters on every call: quota and active state change
// between assignments, so eligibility is never cached.
func (h *TaskHandler) eligibleSites() ([]models.Site, error) {
	rows, err := h.db.Query(`
		SELECT id, name, domain, url, search_keyword, instruction, priority
		FROM site
		WHERE is_active = TRUE AND (quota = 0 OR remaining_quota > 0)
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []models.Site
	for rows.Next() {
		var s models.Site
		if err := rows.Scan(&s.ID, &s.Name, &s.Domain, &s.URL, &s.SearchKeyword, &s.Instruction, &s.Priority); err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	return sites, rows.Err()
}

func targetSiteOf(s models.Site) models.TargetSite {
	return models.TargetSite{
		Name:          s.Name,
		Domain:        s.Domain,
		URL:           s.URL,
		SearchKeyword: s.SearchKeyword,
		Instruction:   s.Instruction,
	}
}
