package common

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// MakeRandHexString returns size random bytes encoded as hex, so the result
// is twice as long as size.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Digest returns the SHA-256 hex digest of a secret. Refresh tokens and
// reset hashes are persisted only in this form.
func Digest(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// NormalizeEmail lower-cases and trims an email address before it reaches a store.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
