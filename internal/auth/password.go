package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLength        = 16
	keyLength         = 32
	defaultIterations = 210000
)

// Hasher derives and verifies password hashes using PBKDF2-SHA256 with a
// random per-password salt. Hash and salt are produced and consumed as
// base64 strings, matching their at-rest encoding.
type Hasher struct {
	iterations int
}

// NewHasher builds a hasher with the given iteration count.
func NewHasher(iterations int) *Hasher {
	if iterations <= 0 {
		iterations = defaultIterations
	}
	return &Hasher{iterations: iterations}
}

// Hash derives a new hash and salt for the secret.
func (h *Hasher) Hash(secret string) (hash, salt string, err error) {
	raw := make([]byte, saltLength)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	key := pbkdf2.Key([]byte(secret), raw, h.iterations, keyLength, sha256.New)
	return base64.StdEncoding.EncodeToString(key), base64.StdEncoding.EncodeToString(raw), nil
}

// Verify reports whether secret matches the stored hash/salt pair. The
// comparison is constant time. Malformed stored material verifies as false
// rather than erroring, so a corrupt row can never bypass the check.
func (h *Hasher) Verify(secret, storedHash, storedSalt string) bool {
	hashBytes, err := base64.StdEncoding.DecodeString(storedHash)
	if err != nil || len(hashBytes) == 0 {
		return false
	}
	saltBytes, err := base64.StdEncoding.DecodeString(storedSalt)
	if err != nil || len(saltBytes) == 0 {
		return false
	}

	computed := pbkdf2.Key([]byte(secret), saltBytes, h.iterations, len(hashBytes), sha256.New)
	return subtle.ConstantTimeCompare(computed, hashBytes) == 1
}
