// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	id, err := GenerateID(16)
	if err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	if len(id) != 32 {
		t.Errorf("Expected 32 hex chars, got %d", len(id))
	}

	// Two IDs should never collide in practice
	id2, err := GenerateID(16)
	if err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	if id == id2 {
		t.Error("Two generated IDs are identical")
	}
}

func TestGenerateTaskCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		code, err := GenerateTaskCode()
		if err != nil {
			t.Fatalf("GenerateTaskCode failed: %v", err)
		}

		if len(code) != CodeLength {
			t.Errorf("Expected %d chars, got %q (%d)", CodeLength, code, len(code))
		}

		for _, c := range code {
			if !strings.ContainsRune(CodeAlphabet, c) {
				t.Errorf("Code %q contains character %q outside the alphabet", code, c)
			}
		}

		seen[code] = true
	}

	// 100 draws from a 31^6 space should essentially never repeat
	if len(seen) < 95 {
		t.Errorf("Expected near-unique codes, got %d unique out of 100", len(seen))
	}
}

func TestCodeAlphabetExcludesAmbiguousChars(t *testing.T) {
	for _, c := range "0O1IL" {
		if strings.ContainsRune(CodeAlphabet, c) {
			t.Errorf("Alphabet must not contain ambiguous character %q", c)
		}
	}
}

func TestGenerateSiteKey(t *testing.T) {
	key, err := GenerateSiteKey()
	if err != nil {
		t.Fatalf("GenerateSiteKey failed: %v", err)
	}
	if len(key) != 10 {
		t.Errorf("Expected 10 chars, got %q", key)
	}
}
