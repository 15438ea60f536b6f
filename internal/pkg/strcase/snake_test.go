package strcase

import "testing"

func TestToLowerSnake(t *testing.T) {
	tests := map[string]string{
		"Email":          "email",
		"HolderID":       "holder_id",
		"BackupCodes":    "backup_codes",
		"ChallengeToken": "challenge_token",
		"TOTPSecret":     "totp_secret",
		"Code2":          "code2",
		"":               "",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := ToLowerSnake(in); got != want {
				t.Fatalf("ToLowerSnake(%q) = %q, want %q", in, got, want)
			}
		})
	}
}
