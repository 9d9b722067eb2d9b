// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/taskgate/cliparse"
	"github.com/danielhkuo/taskgate/handlers"
	"github.com/danielhkuo/taskgate/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	taskHandler := handlers.NewTaskHandler(db, cfg)
	verifyHandler := handlers.NewVerifyHandler(db, cfg)
	sessionHandler := handlers.NewSessionHandler(db, cfg)
	siteHandler := handlers.NewSiteHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Task engine (public, widget + frontend)
	mux.HandleFunc("POST /tasks/assign", middleware.WithLogging(taskHandler.Assign))
	mux.HandleFunc("GET /tasks/check", middleware.WithLogging(taskHandler.Check))
	mux.HandleFunc("POST /tasks/start-countdown", middleware.WithLogging(taskHandler.StartCountdown))
	mux.HandleFunc("GET /tasks/{id}/code", middleware.WithLogging(taskHandler.RevealCode))

	// Code verification
	mux.HandleFunc("POST /codes/verify", middleware.WithLogging(verifyHandler.Verify))

	// Sessions (created by the assessment frontend, unlocked here)
	mux.HandleFunc("POST /sessions", middleware.WithLogging(sessionHandler.Create))
	mux.HandleFunc("POST /sessions/{id}/submit", middleware.WithLogging(sessionHandler.Submit))
	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(sessionHandler.Get))

	// Site registry (admin operations)
	mux.HandleFunc("GET /sites", middleware.WithLogging(siteHandler.List))
	mux.HandleFunc("POST /sites", middleware.WithLogging(siteHandler.Create))
	mux.HandleFunc("GET /sites/key/{siteKey}", middleware.WithLogging(siteHandler.GetByKey))
	mux.HandleFunc("PUT /sites/{id}", middleware.WithLogging(siteHandler.Update))
	mux.HandleFunc("DELETE /sites/{id}", middleware.WithLogging(siteHandler.Delete))
	mux.HandleFunc("GET /sites/{id}/stats", middleware.WithLogging(siteHandler.Stats))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("taskgate API v1"))
	})

	return mux
}
