package cliparse

import (
	"testing"
	"time"
)

func TestParseFlagsDefaults(t *testing.T) {
	cfg, err := ParseFlags([]string{"-d", "postgres://localhost/taskgate"})
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	if cfg.Port != 5000 {
		t.Errorf("Expected default port 5000, got %d", cfg.Port)
	}
	if cfg.TaskTTL != 30*time.Minute {
		t.Errorf("Expected default TTL 30m, got %v", cfg.TaskTTL)
	}
	if cfg.Dwell != 60*time.Second {
		t.Errorf("Expected default dwell 60s, got %v", cfg.Dwell)
	}
	if cfg.SweepInterval != 5*time.Minute {
		t.Errorf("Expected default sweep interval 5m, got %v", cfg.SweepInterval)
	}
	if cfg.BypassCode != "" {
		t.Errorf("Bypass code must default to disabled, got %q", cfg.BypassCode)
	}
}

func TestParseFlagsExplicit(t *testing.T) {
	cfg, err := ParseFlags([]string{
		"-p", "8080",
		"-d", "postgres://localhost/taskgate",
		"-task-ttl", "10",
		"-dwell", "5",
		"-sweep-interval", "0",
		"-bypass-code", "DEMO123",
	})
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Port)
	}
	if cfg.TaskTTL != 10*time.Minute {
		t.Errorf("Expected TTL 10m, got %v", cfg.TaskTTL)
	}
	if cfg.Dwell != 5*time.Second {
		t.Errorf("Expected dwell 5s, got %v", cfg.Dwell)
	}
	if cfg.SweepInterval != 0 {
		t.Errorf("Expected sweeper disabled, got %v", cfg.SweepInterval)
	}
	if cfg.BypassCode != "DEMO123" {
		t.Errorf("Expected bypass code DEMO123, got %q", cfg.BypassCode)
	}
}

func TestParseFlagsEnvFallback(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/taskgate")
	t.Setenv("PORT", "9090")
	t.Setenv("DWELL_SECONDS", "15")

	cfg, err := ParseFlags(nil)
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	if cfg.DatabaseURL != "postgres://env/taskgate" {
		t.Errorf("Expected database URL from env, got %q", cfg.DatabaseURL)
	}
	if cfg.Port != 9090 {
		t.Errorf("Expected port 9090 from env, got %d", cfg.Port)
	}
	if cfg.Dwell != 15*time.Second {
		t.Errorf("Expected dwell 15s from env, got %v", cfg.Dwell)
	}
}

func TestParseFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing database URL", nil},
		{"negative TTL", []string{"-d", "x", "-task-ttl", "-5"}},
		{"negative dwell", []string{"-d", "x", "-dwell", "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}
