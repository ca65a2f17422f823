package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestPassword applies the one-way transform agreed with the storefront
// API: SHA-256, encoded as lowercase hexadecimal. Plaintext passwords never
// leave this process.
func DigestPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
