package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification and construction failures. Verify never returns a bare
// library error; callers only need errors.Is against these.
var (
	ErrInvalidSigningMethod = errors.New("jwt: unexpected signing method")
	ErrSigningKeyTooShort   = errors.New("jwt: HS512 secret shorter than 64 bytes")
	ErrTokenExpired         = errors.New("jwt: token expired")
	ErrInvalidToken         = errors.New("jwt: token invalid")
)

// JWT generates and verifies tokens for one audience.
type JWT interface {
	Generate(holderID int64, email string) (string, error)
	Verify(tokenStr string) (Claims, error)
}

type (
	clocker   interface{ Now() time.Time }
	generator interface{ Generate() string }
)

// Config configures one signer. Audience is both stamped on issued tokens
// and required on verified ones.
type Config struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
	Clock    clocker
	UUID     generator // token IDs
}

// Claims carries the holder identity next to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	HolderID int64  `json:"holder_id,string"`
	Email    string `json:"email"`
}
