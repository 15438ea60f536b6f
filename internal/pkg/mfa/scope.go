package mfa

// Purpose identifies what a ciphertext protects.
type Purpose string

const (
	// PurposeTOTPSecret scopes encryption to a holder's TOTP shared secret.
	PurposeTOTPSecret Purpose = "totp_secret"
)

// Scope binds a ciphertext to its owner. It is fed to AES-GCM as additional
// authenticated data, so a secret copied onto another holder row will not decrypt.
type Scope struct {
	HolderID int64
	Purpose  Purpose
}
