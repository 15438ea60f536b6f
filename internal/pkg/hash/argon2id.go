package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id implements Hash using Argon2id with a random salt per value and
// a PHC-style encoding ($argon2id$v=..$m=..,t=..,p=..$salt$key).
type Argon2id struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
	pepper      string
	sem         chan struct{}
}

// Argon2idOption tunes an Argon2id hasher.
type Argon2idOption func(*Argon2id)

// WithArgon2idCost overrides memory (KiB), iterations and parallelism.
func WithArgon2idCost(memory, iterations uint32, parallelism uint8) Argon2idOption {
	return func(a *Argon2id) {
		a.memory = memory
		a.iterations = iterations
		a.parallelism = parallelism
	}
}

// WithArgon2idMaxConcurrent bounds how many derivations run at once.
// Zero disables the limit.
func WithArgon2idMaxConcurrent(n int) Argon2idOption {
	return func(a *Argon2id) {
		if n <= 0 {
			a.sem = nil
			return
		}
		a.sem = make(chan struct{}, n)
	}
}

// NewArgon2id returns an Argon2id hasher. The defaults suit short, high-entropy
// secrets such as backup codes.
func NewArgon2id(pepper string, opts ...Argon2idOption) *Argon2id {
	a := &Argon2id{
		memory:      19 * 1024,
		iterations:  2,
		parallelism: 1,
		saltLength:  16,
		keyLength:   32,
		pepper:      pepper,
		sem:         make(chan struct{}, 4),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Hash returns the encoded digest of str.
func (a *Argon2id) Hash(str string) ([]byte, error) {
	salt := make([]byte, a.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key := a.derive(str, salt, a.iterations, a.memory, a.parallelism, a.keyLength)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		a.memory,
		a.iterations,
		a.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return []byte(encoded), nil
}

// Verify reports whether str matches the encoded digest. Parameters are read
// from the encoding so digests survive a cost change.
func (a *Argon2id) Verify(hashed, str string) bool {
	if hashed == "" || str == "" {
		return false
	}

	parts := strings.Split(hashed, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false
	}

	computed := a.derive(str, salt, iterations, memory, parallelism, uint32(len(expected)))

	return subtle.ConstantTimeCompare(expected, computed) == 1
}

func (a *Argon2id) derive(str string, salt []byte, t, m uint32, p uint8, keyLen uint32) []byte {
	if a.sem != nil {
		a.sem <- struct{}{}
		defer func() { <-a.sem }()
	}

	return argon2.IDKey([]byte(str+a.pepper), salt, t, m, p, keyLen)
}
