package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/mattn/go-isatty"

	"github.com/danielhkuo/taskgate/cliparse"
	"github.com/danielhkuo/taskgate/db"
	"github.com/danielhkuo/taskgate/middleware"
	"github.com/danielhkuo/taskgate/router"
)

func main() {
	// Local .env is optional; deployed instances use real env vars
	_ = godotenv.Load()

	// Human-readable logs on a terminal, JSON for log collectors
	if isatty.IsTerminal(os.Stdout.Fd()) {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	} else {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL
	dbConn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	// Load destination sites from the seed file, if configured
	if cfg.SeedFile != "" {
		if err := db.SeedSites(dbConn, cfg.SeedFile); err != nil {
			slog.Error("site seeding failed", "error", err, "file", cfg.SeedFile)
			os.Exit(1)
		}
	}

	// Background expiry sweep; reads filter on expires_at regardless
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.SweepInterval > 0 {
		go db.RunSweeper(ctx, dbConn, cfg.SweepInterval)
	}

	// Create router; CORS wraps everything because the widget calls
	// from arbitrary destination domains
	mux := router.NewRouter(dbConn, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		cancel()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "dwell", cfg.Dwell, "task_ttl", cfg.TaskTTL)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
