package entity

import "time"

type Holder struct {
	ID            int64
	Email         string
	FullName      string
	PasswordHash  string
	Status        HolderStatus
	EmailVerified bool
	TwoFactor     TwoFactor
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Profile returns the public view of h. Secrets and backup codes never leave
// this package through it, only their count.
func (h Holder) Profile() Profile {
	return Profile{
		ID:                   h.ID,
		Email:                h.Email,
		FullName:             h.FullName,
		EmailVerified:        h.EmailVerified,
		TwoFactorEnabled:     h.TwoFactor.Enabled,
		RemainingBackupCodes: len(h.TwoFactor.BackupCodes),
	}
}

type Profile struct {
	ID                   int64
	Email                string
	FullName             string
	EmailVerified        bool
	TwoFactorEnabled     bool
	RemainingBackupCodes int
}

// TwoFactor holds the stored second-factor fields. Secret is the sealed
// ciphertext and BackupCodes are digests, one per unused code.
type TwoFactor struct {
	Enabled     bool
	Secret      []byte
	BackupCodes []string
}

func (t TwoFactor) State() TwoFactorState {
	if t.Enabled {
		return TwoFactorStateEnabled
	}
	return TwoFactorStateDisabled
}

type NewHolder struct {
	ID                    int64
	Email                 string
	FullName              string
	PasswordHash          string
	Status                HolderStatus
	VerificationToken     string
	VerificationExpiresAt time.Time
}
