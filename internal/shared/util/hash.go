package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashOwner returns a storage-safe identifier for a session or CLI owner.
func HashOwner(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
