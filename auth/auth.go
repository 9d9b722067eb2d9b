// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// CodeAlphabet excludes visually ambiguous characters (0/O, 1/I/L)
// so codes survive being read off a screen and retyped.
const CodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// CodeLength is the number of characters in a verification code.
const CodeLength = 6

// siteKeyAlphabet allows lowercase too; site keys are embed-script
// identifiers, never retyped by hand.
const siteKeyAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"

const siteKeyLength = 10

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateTaskCode creates a one-time verification code.
// Codes are uppercase and drawn from CodeAlphabet with crypto/rand.
func GenerateTaskCode() (string, error) {
	return randomString(CodeAlphabet, CodeLength)
}

// GenerateSiteKey creates the public key a destination site embeds in
// its widget script tag to identify itself to the API.
func GenerateSiteKey() (string, error) {
	return randomString(siteKeyAlphabet, siteKeyLength)
}

func randomString(alphabet string, length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}
