// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/taskgate/auth"
	"github.com/danielhkuo/taskgate/cliparse"
	"github.com/danielhkuo/taskgate/middleware"
	"github.com/danielhkuo/taskgate/models"
)

const defaultInstruction = "Visit the website and get the verification code"

const siteColumns = `id, site_key, name, domain, url, search_keyword, instruction, target_element,
	is_active, quota, remaining_quota, priority, total_visits, total_completed, created_at`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type SiteHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewSiteHandler(db *sql.DB, cfg cliparse.Config) *SiteHandler {
	return &SiteHandler{db: db, cfg: cfg}
}

// List handles GET /sites
func (h *SiteHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`SELECT ` + siteColumns + ` FROM site ORDER BY created_at DESC`)
	if err != nil {
		slog.Error("failed to query sites", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	sites := []models.Site{}
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			slog.Error("failed to scan site", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate sites", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, sites)
}

// Create handles POST /sites
func (h *SiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSiteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Domain == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "domain is required")
		return
	}
	if req.Quota < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "quota must be >= 0")
		return
	}

	priority := 1
	if req.Priority != nil {
		priority = *req.Priority
	}
	if priority < 0 || priority > 100 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "priority must be in [0,100]")
		return
	}

	siteID, err := auth.GenerateID(12)
	if err != nil {
		slog.Error("failed to generate site ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create site")
		return
	}
	siteKey, err := auth.GenerateSiteKey()
	if err != nil {
		slog.Error("failed to generate site key", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create site")
		return
	}

	instruction := req.Instruction
	if instruction == "" {
		instruction = defaultInstruction
	}
	targetElement := req.TargetElement
	if targetElement == "" {
		targetElement = "#traffic-widget"
	}

	now := time.Now()
	_, err = h.db.Exec(`
		INSERT INTO site (id, site_key, name, domain, url, search_keyword, instruction,
		                  target_element, quota, remaining_quota, priority, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9, $10, $11)
	`, siteID, siteKey, req.Name, req.Domain, req.URL, req.SearchKeyword, instruction,
		targetElement, req.Quota, priority, now)
	if err != nil {
		slog.Error("failed to insert site", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create site")
		return
	}

	slog.Info("site created", "site_id", siteID, "domain", req.Domain, "priority", priority, "quota", req.Quota)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSiteResponse{
		Site: models.Site{
			ID:             siteID,
			SiteKey:        siteKey,
			Name:           req.Name,
			Domain:         req.Domain,
			URL:            req.URL,
			SearchKeyword:  req.SearchKeyword,
			Instruction:    instruction,
			TargetElement:  targetElement,
			IsActive:       true,
			Quota:          req.Quota,
			RemainingQuota: req.Quota,
			Priority:       priority,
			CreatedAt:      now,
		},
		EmbedCode: fmt.Sprintf(`<script src="/widget.js?id=%s"></script>`, siteKey),
	})
}

// GetByKey handles GET /sites/key/{siteKey}
// Widget configuration lookup; only active sites answer.
func (h *SiteHandler) GetByKey(w http.ResponseWriter, r *http.Request) {
	siteKey := r.PathValue("siteKey")
	if siteKey == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "siteKey is required")
		return
	}

	row := h.db.QueryRow(`SELECT `+siteColumns+` FROM site WHERE site_key = $1 AND is_active = TRUE`, siteKey)
	site, err := scanSite(row)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Site not found")
		return
	}
	if err != nil {
		slog.Error("failed to query site", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, site)
}

// Update handles PUT /sites/{id}
// Partial update: only fields present in the request body change.
func (h *SiteHandler) Update(w http.ResponseWriter, r *http.Request) {
	siteID := r.PathValue("id")
	if siteID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "site id is required")
		return
	}

	var req models.UpdateSiteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	b := psql.Update("site")
	touched := false
	set := func(col string, v interface{}) {
		b = b.Set(col, v)
		touched = true
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Domain != nil {
		set("domain", *req.Domain)
	}
	if req.URL != nil {
		set("url", *req.URL)
	}
	if req.SearchKeyword != nil {
		set("search_keyword", *req.SearchKeyword)
	}
	if req.Instruction != nil {
		set("instruction", *req.Instruction)
	}
	if req.TargetElement != nil {
		set("target_element", *req.TargetElement)
	}
	if req.IsActive != nil {
		set("is_active", *req.IsActive)
	}
	if req.Priority != nil {
		if *req.Priority < 0 || *req.Priority > 100 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "priority must be in [0,100]")
			return
		}
		set("priority", *req.Priority)
	}
	if req.Quota != nil {
		if *req.Quota < 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "quota must be >= 0")
			return
		}
		// A quota edit restarts the window
		set("quota", *req.Quota)
		set("remaining_quota", *req.Quota)
	}

	if !touched {
		middleware.ErrorResponse(w, http.StatusBadRequest, "no fields to update")
		return
	}

	query, args, err := b.Where(sq.Eq{"id": siteID}).
		Suffix("RETURNING " + siteColumns).
		ToSql()
	if err != nil {
		slog.Error("failed to build site update", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	site, err := scanSite(h.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Site not found")
		return
	}
	if err != nil {
		slog.Error("failed to update site", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("site updated", "site_id", siteID)
	middleware.JSONResponse(w, http.StatusOK, site)
}

// Delete handles DELETE /sites/{id}
func (h *SiteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	siteID := r.PathValue("id")
	if siteID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "site id is required")
		return
	}

	res, err := h.db.Exec(`DELETE FROM site WHERE id = $1`, siteID)
	if err != nil {
		slog.Error("failed to delete site", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	rows, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read delete result", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if rows == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Site not found")
		return
	}

	slog.Info("site deleted", "site_id", siteID)
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "Site deleted"})
}

// Stats handles GET /sites/{id}/stats
func (h *SiteHandler) Stats(w http.ResponseWriter, r *http.Request) {
	siteID := r.PathValue("id")
	if siteID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "site id is required")
		return
	}

	var visits, completed int
	err := h.db.QueryRow(`
		SELECT total_visits, total_completed FROM site WHERE id = $1
	`, siteID).Scan(&visits, &completed)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Site not found")
		return
	}
	if err != nil {
		slog.Error("failed to query site stats", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rate := "0.00"
	if visits > 0 {
		rate = fmt.Sprintf("%.2f", float64(completed)/float64(visits)*100)
	}

	middleware.JSONResponse(w, http.StatusOK, models.SiteStatsResponse{
		TotalVisits:    visits,
		TotalCompleted: completed,
		CompletionRate: rate,
		Summary: fmt.Sprintf("%s visits, %s completed",
			humanize.Comma(int64(visits)), humanize.Comma(int64(completed))),
	})
}

// scanSite reads a full site row from either *sql.Row or *sql.Rows.
func scanSite(row interface{ Scan(dest ...interface{}) error }) (models.Site, error) {
	var s models.Site
	err := row.Scan(
		&s.ID, &s.SiteKey, &s.Name, &s.Domain, &s.URL, &s.SearchKeyword,
		&s.Instruction, &s.TargetElement, &s.IsActive, &s.Quota,
		&s.RemainingQuota, &s.Priority, &s.TotalVisits, &s.TotalCompleted,
		&s.CreatedAt,
	)
	return s, err
}
