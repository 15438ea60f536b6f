package uid

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomHex generates hex strings backed by crypto/rand.
type RandomHex struct {
	size int
}

// NewRandomHex returns a generator producing size random bytes per value
// (2*size hex characters). A non-positive size falls back to 32 bytes.
func NewRandomHex(size int) *RandomHex {
	if size <= 0 {
		size = 32
	}
	return &RandomHex{size: size}
}

// Generate returns a lowercase hex string of 2*size characters.
func (r *RandomHex) Generate() string {
	buf := make([]byte, r.size)
	// crypto/rand.Read never returns an error since Go 1.24; it crashes the
	// program instead when the kernel source is unavailable.
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
