package mfa

// Matcher compares a submitted code with one stored entry. Stored entries are
// digests in production, so equality is delegated to the hasher.
type Matcher interface {
	Verify(stored, submitted string) bool
}

// PlainMatcher compares stored entries literally.
type PlainMatcher struct{}

// Verify reports stored == submitted.
func (PlainMatcher) Verify(stored, submitted string) bool {
	return stored == submitted
}

// ConsumeBackupCode looks up submitted in codes. On a hit it returns a new slice
// without that one entry and true. On a miss it returns codes unchanged and false.
//
// The input slice is never modified, so a caller that aborts its transaction
// still holds the original set. Persisting the result must happen in the same
// transaction that read codes.
func ConsumeBackupCode(codes []string, submitted string, m Matcher) ([]string, bool) {
	code, ok := NormalizeBackupCode(submitted)
	if !ok || len(codes) == 0 {
		return codes, false
	}

	for i, stored := range codes {
		if !m.Verify(stored, code) {
			continue
		}

		updated := make([]string, 0, len(codes)-1)
		updated = append(updated, codes[:i]...)
		updated = append(updated, codes[i+1:]...)

		return updated, true
	}

	return codes, false
}
