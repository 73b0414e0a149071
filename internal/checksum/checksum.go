// Package checksum computes content digests for source documents and build outputs.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SumString is Sum for text content such as rendered pages.
func SumString(s string) string {
	return Sum([]byte(s))
}
