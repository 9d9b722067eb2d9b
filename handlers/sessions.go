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

// sessionRetention is how long a session row is kept before the sweep
// purges it. Generous next to the task TTL so a slow verifier never
// loses an unlocked result.
const sessionRetention = 24 * time.Hour

type SessionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewSessionHandler(db *sql.DB, cfg cliparse.Config) *SessionHandler {
	return &SessionHandler{db: db, cfg: cfg}
}

// Create handles POST /sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Fingerprint == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "fingerprint is required")
		return
	}
	testKind := req.TestKind
	if testKind == "" {
		testKind = "iq"
	}

	sessionID := uuid.NewString()
	now := time.Now()
	_, err := h.db.Exec(`
		INSERT INTO session (id, test_kind, fingerprint, started_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, sessionID, testKind, req.Fingerprint, now, now.Add(sessionRetention))
	if err != nil {
		slog.Error("failed to insert session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	slog.Info("session created", "session_id", sessionID, "test_kind", testKind)
	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{SessionID: sessionID})
}

// Submit handles POST /sessions/{id}/submit
// Records the score the external scoring service computed and marks
// the session submitted. Scores are opaque to this service.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	var req models.SubmitSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	res, err := h.db.Exec(`
		UPDATE session
		SET score = $1, max_score = $2, percentile = $3, status = 'submitted', submitted_at = NOW()
		WHERE id = $4 AND status = 'in_progress'
	`, req.Score, req.MaxScore, req.Percentile, sessionID)
	if err != nil {
		slog.Error("failed to submit session", "error", err)
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
		var exists bool
		if err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM session WHERE id = $1)`, sessionID).Scan(&exists); err != nil {
			slog.Error("failed to query session", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if !exists {
			middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
			return
		}
		middleware.ErrorResponse(w, http.StatusConflict, "Session already submitted")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "Session submitted"})
}

// Get handles GET /sessions/{id}
// The unlock gate: results stay hidden until the verification gate
// flips the session to unlocked.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	var s models.Session
	var submittedAt, completedAt sql.NullTime
	err := h.db.QueryRow(`
		SELECT id, test_kind, score, max_score, percentile, status, unlocked,
		       started_at, submitted_at, completed_at
		FROM session
		WHERE id = $1
	`, sessionID).Scan(
		&s.ID, &s.TestKind, &s.Score, &s.MaxScore, &s.Percentile, &s.Status,
		&s.Unlocked, &s.StartedAt, &submittedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !s.Unlocked {
		middleware.ErrorResponse(w, http.StatusForbidden, "Results are locked until code verification")
		return
	}

	resp := models.SessionResultResponse{
		SessionID:  s.ID,
		TestKind:   s.TestKind,
		Score:      s.Score,
		MaxScore:   s.MaxScore,
		Percentile: s.Percentile,
		Status:     s.Status,
		Unlocked:   s.Unlocked,
		StartedAt:  s.StartedAt,
	}
	if completedAt.Valid {
		resp.DoneAt = &completedAt.Time
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
