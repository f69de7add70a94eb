package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashPassword produces the stored digest for a password and its per-user
// salt.
func HashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}

// CheckPassword compares a candidate password against the stored digest in
// constant time.
func CheckPassword(password, salt, digest string) bool {
	candidate := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(digest)) == 1
}
