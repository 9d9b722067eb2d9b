// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides random identifier and code generation utilities.

# Verification Codes

One-time codes handed out after the countdown dwell:

	code, err := auth.GenerateTaskCode()

Codes are 6 characters, uppercase, drawn with crypto/rand from an
alphabet that excludes visually ambiguous characters (0/O, 1/I/L).
Clients read them off a destination page and retype them, so legibility
matters more than entropy here; the dwell interval and per-device task
binding carry the anti-sharing guarantees.

# Site Keys

Public widget identifiers for destination sites:

	key, err := auth.GenerateSiteKey()

10 alphanumeric characters, mixed case. Embedded in the widget script
tag, so they are identifiers, not secrets.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
