package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// RenderKey is the cache key of dot rendered in format ("svg" or "png"):
// "<format>/<hash of dot>.<format>". Each format gets its own directory and
// the file extension matches the content.
func RenderKey(format, dot string) string {
	return format + "/" + Hash([]byte(dot)) + "." + format
}
