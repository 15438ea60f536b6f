package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSHA256 implements Hash with a keyed, deterministic digest. The same input
// always yields the same hex string, which lets a store look a value up by its
// digest without ever holding the raw value.
type HMACSHA256 struct {
	secret []byte
}

// NewHMACSHA256 creates a hasher keyed with secret.
func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{secret: []byte(secret)}
}

// Hash returns the hex-encoded digest of str.
func (s *HMACSHA256) Hash(str string) ([]byte, error) {
	return []byte(s.Digest(str)), nil
}

// Verify reports whether hashed is the digest of str.
func (s *HMACSHA256) Verify(hashed, str string) bool {
	return hmac.Equal([]byte(hashed), []byte(s.Digest(str)))
}

// Digest returns the hex-encoded digest of str.
func (s *HMACSHA256) Digest(str string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(str))
	return hex.EncodeToString(h.Sum(nil))
}
