package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

const (
	defaultPort         = 5000
	defaultTaskTTLMin   = 30
	defaultDwellSeconds = 60
	defaultSweepMin     = 5
)

type Config struct {
	Port        int
	DatabaseURL string

	// TaskTTL bounds a task's lifetime from creation.
	TaskTTL time.Duration

	// Dwell is the mandatory wait between countdown start and code reveal.
	Dwell time.Duration

	// SweepInterval is the period of the background expiry sweep.
	// Zero disables the sweeper; read-time filters still apply.
	SweepInterval time.Duration

	// BypassCode, when non-empty, verifies any live task regardless of
	// its stored code. For demo environments only.
	BypassCode string

	// SeedFile optionally points at a YAML file of sites to load at startup.
	SeedFile string
}

// ParseFlags validates flags, falling back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var ttlMin, dwellSec, sweepMin int

	fs := flag.NewFlagSet("taskgate", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")

	// Engine timing
	fs.IntVar(&ttlMin, "task-ttl", 0, "Task TTL in minutes")
	fs.IntVar(&dwellSec, "dwell", 0, "Code reveal dwell in seconds")
	fs.IntVar(&sweepMin, "sweep-interval", -1, "Expiry sweep interval in minutes (0 disables)")

	// Operational extras
	fs.StringVar(&cfg.BypassCode, "bypass-code", "", "Demo bypass code (prefer env; empty disables)")
	fs.StringVar(&cfg.SeedFile, "seed", "", "YAML site seed file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = defaultPort
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	var err error
	if ttlMin, err = intFromEnv(ttlMin, 0, "TASK_TTL_MINUTES", defaultTaskTTLMin); err != nil {
		return Config{}, err
	}
	if ttlMin <= 0 {
		return Config{}, errors.New("task TTL must be positive")
	}
	cfg.TaskTTL = time.Duration(ttlMin) * time.Minute

	if dwellSec, err = intFromEnv(dwellSec, 0, "DWELL_SECONDS", defaultDwellSeconds); err != nil {
		return Config{}, err
	}
	if dwellSec <= 0 {
		return Config{}, errors.New("dwell must be positive")
	}
	cfg.Dwell = time.Duration(dwellSec) * time.Second

	if sweepMin, err = intFromEnv(sweepMin, -1, "SWEEP_INTERVAL_MINUTES", defaultSweepMin); err != nil {
		return Config{}, err
	}
	if sweepMin < 0 {
		return Config{}, errors.New("sweep interval must be >= 0")
	}
	cfg.SweepInterval = time.Duration(sweepMin) * time.Minute

	if cfg.BypassCode == "" {
		cfg.BypassCode = os.Getenv("BYPASS_CODE")
	}
	if cfg.SeedFile == "" {
		cfg.SeedFile = os.Getenv("SEED_FILE")
	}

	return cfg, nil
}

// intFromEnv resolves a numeric setting: flag value if set, then the
// environment variable, then the default. unset marks "flag not given".
func intFromEnv(flagVal, unset int, envName string, def int) (int, error) {
	if flagVal != unset {
		return flagVal, nil
	}
	if s := os.Getenv(envName); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, errors.New("invalid " + envName + " env variable")
		}
		return v, nil
	}
	return def, nil
}
