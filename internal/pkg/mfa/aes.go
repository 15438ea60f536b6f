package mfa

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
)

// Ciphertext layout:
//
//	[0..1]  uint16 version
//	[2..13] nonce
//	[14..]  sealed secret and tag
const (
	aesGCMVersion uint16 = 1
	gcmNonceSize         = 12
	aesKeyLen            = 32
	headerLen            = 2 + gcmNonceSize
)

var (
	ErrEncryptorNotConfigured = errors.New("mfa: encryptor not configured")
	ErrPlaintextEmpty         = errors.New("mfa: plaintext is empty")
	ErrInvalidKeyLength       = errors.New("mfa: invalid key length")
	ErrCiphertextTooShort     = errors.New("mfa: ciphertext too short")
	ErrUnsupportedVersion     = errors.New("mfa: unsupported ciphertext version")
	ErrDecryptFailed          = errors.New("mfa: decrypt failed")
	ErrMissingStaticKey       = errors.New("mfa: missing static key")
)

// AESGCMEncryptor implements Encryptor with AES-256-GCM.
type AESGCMEncryptor struct {
	keys KeyProvider
}

// NewAESGCMEncryptor constructs an AES-GCM encryptor.
func NewAESGCMEncryptor(keys KeyProvider) *AESGCMEncryptor {
	return &AESGCMEncryptor{keys: keys}
}

// Encrypt seals plaintext and binds it to scope.
func (e *AESGCMEncryptor) Encrypt(plaintext []byte, scope Scope) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, ErrPlaintextEmpty
	}

	gcm, err := e.aead(scope)
	if err != nil {
		return nil, err
	}

	out := make([]byte, headerLen, headerLen+len(plaintext)+gcm.Overhead())
	binary.BigEndian.PutUint16(out[0:2], aesGCMVersion)
	if _, err := rand.Read(out[2:headerLen]); err != nil {
		return nil, fmt.Errorf("mfa: nonce generation failed: %w", err)
	}

	return gcm.Seal(out, out[2:headerLen], plaintext, scopeAAD(scope)), nil
}

// Decrypt opens ciphertext produced by Encrypt for the same scope. Every
// failure after parsing is reported as ErrDecryptFailed.
func (e *AESGCMEncryptor) Decrypt(ciphertext []byte, scope Scope) ([]byte, error) {
	if len(ciphertext) <= headerLen {
		return nil, ErrCiphertextTooShort
	}

	if v := binary.BigEndian.Uint16(ciphertext[0:2]); v != aesGCMVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	gcm, err := e.aead(scope)
	if err != nil {
		return nil, err
	}

	plain, err := gcm.Open(nil, ciphertext[2:headerLen], ciphertext[headerLen:], scopeAAD(scope))
	if err != nil {
		return nil, ErrDecryptFailed
	}

	return plain, nil
}

func (e *AESGCMEncryptor) aead(scope Scope) (cipher.AEAD, error) {
	if e == nil || e.keys == nil {
		return nil, ErrEncryptorNotConfigured
	}

	key, err := e.keys.Key(scope)
	if err != nil {
		return nil, fmt.Errorf("mfa: key provider: %w", err)
	}
	if len(key) != aesKeyLen {
		return nil, fmt.Errorf("%w: got %d want %d", ErrInvalidKeyLength, len(key), aesKeyLen)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("mfa: aes init: %w", err)
	}

	return cipher.NewGCMWithNonceSize(block, gcmNonceSize)
}

// scopeAAD is a fixed-length digest of the labelled scope fields.
func scopeAAD(s Scope) []byte {
	canonical := "holder=" + strconv.FormatInt(s.HolderID, 10) + "\npurpose=" + string(s.Purpose) + "\n"
	sum := sha256.Sum256([]byte(canonical))
	return sum[:]
}

// StaticKeyProvider returns the same key for every scope.
type StaticKeyProvider struct {
	KeyBytes []byte
}

// NewStaticKeyProvider derives a 32-byte key from a configured secret of any length.
func NewStaticKeyProvider(secret string) StaticKeyProvider {
	if secret == "" {
		return StaticKeyProvider{}
	}
	sum := sha256.Sum256([]byte(secret))
	return StaticKeyProvider{KeyBytes: sum[:]}
}

// Key returns a copy of the static key.
func (p StaticKeyProvider) Key(_ Scope) ([]byte, error) {
	if len(p.KeyBytes) == 0 {
		return nil, ErrMissingStaticKey
	}
	k := make([]byte, len(p.KeyBytes))
	copy(k, p.KeyBytes)
	return k, nil
}
