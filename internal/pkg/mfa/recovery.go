package mfa

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const (
	// DefaultBackupCodeCount is the size of a freshly generated batch.
	DefaultBackupCodeCount = 10
	// BackupCodeLength is the number of hex characters in a backup code.
	BackupCodeLength = 8
)

// RecoveryCodeGenerator produces a batch of single-use backup codes.
type RecoveryCodeGenerator interface {
	Generate() ([]string, error)
}

// RecoveryCode generates backup codes of BackupCodeLength uppercase hex
// characters (32 random bits each). It never persists anything; the caller shows
// the batch to the holder once and submits it on enable.
type RecoveryCode struct {
	count int
}

// NewRecoveryCode returns a generator producing count codes per batch. A
// non-positive count falls back to DefaultBackupCodeCount.
func NewRecoveryCode(count int) *RecoveryCode {
	if count <= 0 {
		count = DefaultBackupCodeCount
	}
	return &RecoveryCode{count: count}
}

// Generate returns count distinct codes.
func (rc *RecoveryCode) Generate() ([]string, error) {
	out := make([]string, 0, rc.count)
	seen := make(map[string]struct{}, rc.count)
	buf := make([]byte, BackupCodeLength/2)

	for len(out) < rc.count {
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}

		code := strings.ToUpper(hex.EncodeToString(buf))
		if _, ok := seen[code]; ok {
			continue
		}

		seen[code] = struct{}{}
		out = append(out, code)
	}

	return out, nil
}

// NormalizeBackupCode trims and uppercases a submitted code and reports whether
// the result is a well-formed backup code.
func NormalizeBackupCode(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != BackupCodeLength {
		return "", false
	}

	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return "", false
		}
	}

	return code, true
}
