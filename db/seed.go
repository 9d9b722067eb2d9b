// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/taskgate/auth"
)

// SeedSite is one destination entry in a seed file.
type SeedSite struct {
	SiteKey       string `yaml:"siteKey"`
	Name          string `yaml:"name"`
	Domain        string `yaml:"domain"`
	URL           string `yaml:"url"`
	SearchKeyword string `yaml:"searchKeyword"`
	Instruction   string `yaml:"instruction"`
	Quota         int    `yaml:"quota"`
	Priority      int    `yaml:"priority"`
}

// SeedFile is the top-level YAML document.
type SeedFile struct {
	Sites []SeedSite `yaml:"sites"`
}

// ParseSeedFile reads and validates a YAML site seed file.
func ParseSeedFile(path string) (SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedFile{}, fmt.Errorf("read seed file: %w", err)
	}

	var sf SeedFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return SeedFile{}, fmt.Errorf("parse seed file: %w", err)
	}

	for i, s := range sf.Sites {
		if s.Name == "" || s.Domain == "" {
			return SeedFile{}, fmt.Errorf("seed site %d: name and domain are required", i)
		}
		if s.Quota < 0 {
			return SeedFile{}, fmt.Errorf("seed site %q: quota must be >= 0", s.Name)
		}
		if s.Priority < 0 || s.Priority > 100 {
			return SeedFile{}, fmt.Errorf("seed site %q: priority must be in [0,100]", s.Name)
		}
	}

	return sf, nil
}

// SeedSites loads destinations from a YAML file. Idempotent: a domain
// that already exists is skipped, so the file can ship with the deploy
// and be re-applied on every start.
func SeedSites(db *sql.DB, path string) error {
	sf, err := ParseSeedFile(path)
	if err != nil {
		return err
	}

	created := 0
	for _, s := range sf.Sites {
		var exists bool
		err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM site WHERE domain = $1)`, s.Domain).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check existing site %q: %w", s.Domain, err)
		}
		if exists {
			continue
		}

		id, err := auth.GenerateID(12)
		if err != nil {
			return err
		}
		siteKey := s.SiteKey
		if siteKey == "" {
			if siteKey, err = auth.GenerateSiteKey(); err != nil {
				return err
			}
		}
		priority := s.Priority
		if priority == 0 {
			priority = 1
		}
		instruction := s.Instruction
		if instruction == "" {
			instruction = "Visit the website and get the verification code"
		}

		_, err = db.Exec(`
			INSERT INTO site (id, site_key, name, domain, url, search_keyword, instruction,
			                  quota, remaining_quota, priority, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8, $9, $10)
		`, id, siteKey, s.Name, s.Domain, s.URL, s.SearchKeyword, instruction,
			s.Quota, priority, time.Now())
		if err != nil {
			return fmt.Errorf("insert seed site %q: %w", s.Domain, err)
		}
		created++
	}

	slog.Info("site seeding finished", "file", path, "created", created, "total", len(sf.Sites))
	return nil
}
