// Package mfa holds the second-factor primitives that sit next to the TOTP
// algorithm: at-rest encryption of shared secrets, backup-code generation and the
// backup-code ledger.
package mfa

// Encryptor seals and opens secrets bound to a Scope.
type Encryptor interface {
	Encrypt(plaintext []byte, scope Scope) (ciphertext []byte, err error)
	Decrypt(ciphertext []byte, scope Scope) (plaintext []byte, err error)
}

// KeyProvider resolves the AES-256 key for a scope. Keys must be 32 bytes.
type KeyProvider interface {
	Key(scope Scope) ([]byte, error)
}
