package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ResetTokenTTL bounds how long a password-reset secret stays usable.
const ResetTokenTTL = time.Hour

// NewResetSecret returns a high-entropy one-time secret for a reset link.
// Only its hash is ever stored.
func NewResetSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashResetSecret is the stored form of a reset secret.
func HashResetSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
