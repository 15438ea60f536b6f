package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/pawhaven/internal/identity/entity"
	"github.com/shandysiswandi/pawhaven/internal/pkg/clock"
	"github.com/shandysiswandi/pawhaven/internal/pkg/config"
	"github.com/shandysiswandi/pawhaven/internal/pkg/hash"
	"github.com/shandysiswandi/pawhaven/internal/pkg/idempotency"
	"github.com/shandysiswandi/pawhaven/internal/pkg/instrument"
	"github.com/shandysiswandi/pawhaven/internal/pkg/mfa"
	"github.com/shandysiswandi/pawhaven/internal/pkg/otp"
	"github.com/shandysiswandi/pawhaven/internal/pkg/uid"
	"github.com/shandysiswandi/pawhaven/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const defaultVerificationTTL = 24 * time.Hour

type EmailVerificationEvent struct {
	HolderID  int64
	Email     string
	FullName  string
	Token     string
	ExpiresAt time.Time
}

type repoMessaging interface {
	PublishEmailVerification(ctx context.Context, msg EmailVerificationEvent) error
}

// MutateTwoFactorFunc receives the locked two-factor fields and returns the
// fields to write. Returning an error rolls the transaction back.
type MutateTwoFactorFunc func(current entity.TwoFactor) (entity.TwoFactor, error)

type repoDB interface {
	GetHolderByEmail(ctx context.Context, email string) (*entity.Holder, error)
	GetHolderByID(ctx context.Context, id int64) (*entity.Holder, error)

	CreateHolder(ctx context.Context, in entity.NewHolder) error

	UpdateVerificationToken(ctx context.Context, id int64, digest string, expiresAt time.Time) error
	ConsumeVerificationToken(ctx context.Context, digest string, now time.Time) (int64, error)

	MutateTwoFactor(ctx context.Context, holderID int64, fn MutateTwoFactorFunc) error
}

type Usecase struct {
	repoDB          repoDB
	repoMessaging   repoMessaging
	idemp           idempotency.Idempotency
	validator       validator.Validator
	cfg             config.Config
	hmac            hash.Hash
	bcrypt          hash.Hash
	argon2id        hash.Hash
	mfaEncryptor    mfa.Encryptor
	mfaRecoveryCode mfa.RecoveryCodeGenerator
	uid             uid.NumberID
	token           uid.StringID
	totp            otp.OTP
	clock           clock.Clocker
	ins             instrument.Instrumentation

	signInCounter     metric.Int64Counter
	backupCodeCounter metric.Int64Counter
}

type Dependency struct {
	RepoDB          repoDB
	RepoMessaging   repoMessaging
	Idempotency     idempotency.Idempotency
	Validator       validator.Validator
	Config          config.Config
	HMAC            hash.Hash
	Bcrypt          hash.Hash
	Argon2ID        hash.Hash
	MFAEncryptor    mfa.Encryptor
	MFARecoveryCode mfa.RecoveryCodeGenerator
	UID             uid.NumberID
	Token           uid.StringID
	Totp            otp.OTP
	Clock           clock.Clocker
	Instrument      instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	s := &Usecase{
		repoDB:          dep.RepoDB,
		repoMessaging:   dep.RepoMessaging,
		idemp:           dep.Idempotency,
		validator:       dep.Validator,
		cfg:             dep.Config,
		hmac:            dep.HMAC,
		bcrypt:          dep.Bcrypt,
		argon2id:        dep.Argon2ID,
		mfaEncryptor:    dep.MFAEncryptor,
		mfaRecoveryCode: dep.MFARecoveryCode,
		uid:             dep.UID,
		token:           dep.Token,
		totp:            dep.Totp,
		clock:           dep.Clock,
		ins:             dep.Instrument,
	}

	meter := dep.Instrument.Meter("identity.usecase")
	s.signInCounter = newCounter(meter, "identity.signin.total", "Sign-in attempts by outcome")
	s.backupCodeCounter = newCounter(meter, "identity.backup_code.consumed", "Backup codes consumed")

	return s
}

func newCounter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		slog.Warn("failed to create counter, falling back to noop", "name", name, "error", err)
		return noop.Int64Counter{}
	}
	return c
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

func (s *Usecase) recordSignIn(ctx context.Context, outcome string) {
	s.signInCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (s *Usecase) verificationTTL() time.Duration {
	if ttl := s.cfg.GetHour("modules.identity.verification_token_ttl_hours"); ttl > 0 {
		return ttl
	}
	return defaultVerificationTTL
}

func (s *Usecase) secretScope(holderID int64) mfa.Scope {
	return mfa.Scope{HolderID: holderID, Purpose: mfa.PurposeTOTPSecret}
}

// ensureHolderActive is the account-status gate. Callers decide which error
// the holder sees; the reason is only logged.
func (s *Usecase) ensureHolderActive(ctx context.Context, h *entity.Holder) bool {
	switch h.Status.Ensure() {
	case entity.HolderStatusActive:
		return true
	case entity.HolderStatusBanned:
		slog.WarnContext(ctx, "holder account is banned", "holder_id", h.ID)
	case entity.HolderStatusInactive:
		slog.WarnContext(ctx, "holder account is inactive", "holder_id", h.ID)
	default:
		slog.WarnContext(ctx, "holder account status is unrecognized", "holder_id", h.ID, "status", int16(h.Status))
	}
	return false
}
