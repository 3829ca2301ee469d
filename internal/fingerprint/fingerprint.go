// Package fingerprint computes content digests used as the dedup key for photos.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Size is the length of a hex-encoded fingerprint.
const Size = sha256.Size * 2

// Compute returns the hex SHA-256 digest of data.
func Compute(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Valid reports whether s looks like a fingerprint produced by this package.
func Valid(s string) bool {
	if len(s) != Size {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
