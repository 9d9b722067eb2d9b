// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 5000)
  - DatabaseURL: PostgreSQL connection string (required)
  - TaskTTL: Task lifetime from creation (default: 30m)
  - Dwell: Wait between countdown start and code reveal (default: 60s)
  - SweepInterval: Background expiry sweep period (default: 5m, 0 disables)
  - BypassCode: Demo-only code accepted for any live task (default: disabled)
  - SeedFile: Optional YAML file of sites to load at startup

# CLI Flags

	-p              Server port
	-d              Database URL
	-task-ttl       Task TTL in minutes
	-dwell          Dwell in seconds
	-sweep-interval Sweep interval in minutes
	-bypass-code    Demo bypass code
	-seed           YAML site seed file

# Environment Variables

Flags fall back to environment variables:

	PORT                   → -p
	DATABASE_URL           → -d
	TASK_TTL_MINUTES       → -task-ttl
	DWELL_SECONDS          → -dwell
	SWEEP_INTERVAL_MINUTES → -sweep-interval
	BYPASS_CODE            → -bypass-code
	SEED_FILE              → -seed

CLI flags take precedence over environment variables. main loads a
local .env file (via godotenv) before parsing, so a checked-out dev
tree needs no exported shell state.

# Validation

ParseFlags returns an error if required values are missing or invalid:

  - DATABASE_URL must be provided
  - TaskTTL and Dwell must be positive
  - SweepInterval must be >= 0
*/
package cliparse
