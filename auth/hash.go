package auth

import (
  "crypto/sha256"
  "fmt"
)

// HashPassword returns the hex-encoded sha256 digest of the given
// plaintext. The digest is deterministic and fixed-length (64 hex
// characters), so login can compare digests instead of plaintexts and
// the store only ever holds digests.
func HashPassword(plaintext string) string {
  sum := sha256.Sum256([]byte(plaintext))
  return fmt.Sprintf("%x", sum)
}
