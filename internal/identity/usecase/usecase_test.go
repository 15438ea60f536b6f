package usecase

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	libotp "github.com/pquerna/otp"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/pawhaven/internal/identity/entity"
	"github.com/shandysiswandi/pawhaven/internal/pkg/clock"
	"github.com/shandysiswandi/pawhaven/internal/pkg/config"
	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
	"github.com/shandysiswandi/pawhaven/internal/pkg/hash"
	"github.com/shandysiswandi/pawhaven/internal/pkg/idempotency"
	"github.com/shandysiswandi/pawhaven/internal/pkg/instrument"
	"github.com/shandysiswandi/pawhaven/internal/pkg/mfa"
	"github.com/shandysiswandi/pawhaven/internal/pkg/otp"
	"github.com/shandysiswandi/pawhaven/internal/pkg/uid"
	"github.com/shandysiswandi/pawhaven/internal/pkg/validator"
)

const (
	testPassword   = "Secret123!"
	testTOTPSecret = "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"
)

const testConfig = `
mfa:
  qr_size: 128
modules:
  identity:
    verification_token_ttl_hours: 24
    resend_dedupe_seconds: 60
`

type memoryRow struct {
	holder       entity.Holder
	tokenDigest  string
	tokenExpires time.Time
}

// memoryRepo keeps holders in a map. One mutex stands in for the row lock.
type memoryRepo struct {
	mu   sync.Mutex
	rows map[int64]*memoryRow

	failWith error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[int64]*memoryRow)}
}

func cloneHolder(h entity.Holder) *entity.Holder {
	h.TwoFactor.Secret = slices.Clone(h.TwoFactor.Secret)
	h.TwoFactor.BackupCodes = slices.Clone(h.TwoFactor.BackupCodes)
	return &h
}

func (r *memoryRepo) GetHolderByEmail(_ context.Context, email string) (*entity.Holder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, row := range r.rows {
		if row.holder.Email == email {
			return cloneHolder(row.holder), nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (r *memoryRepo) GetHolderByID(_ context.Context, id int64) (*entity.Holder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return nil, r.failWith
	}
	row, ok := r.rows[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return cloneHolder(row.holder), nil
}

func (r *memoryRepo) CreateHolder(_ context.Context, in entity.NewHolder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.holder.Email == in.Email {
			return goerror.ErrConflict
		}
	}

	r.rows[in.ID] = &memoryRow{
		holder: entity.Holder{
			ID:           in.ID,
			Email:        in.Email,
			FullName:     in.FullName,
			PasswordHash: in.PasswordHash,
			Status:       in.Status,
		},
		tokenDigest:  in.VerificationToken,
		tokenExpires: in.VerificationExpiresAt,
	}
	return nil
}

func (r *memoryRepo) UpdateVerificationToken(_ context.Context, id int64, digest string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return goerror.ErrNotFound
	}
	row.tokenDigest = digest
	row.tokenExpires = expiresAt
	return nil
}

func (r *memoryRepo) ConsumeVerificationToken(_ context.Context, digest string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, row := range r.rows {
		if row.tokenDigest == "" || row.tokenDigest != digest || !row.tokenExpires.After(now) {
			continue
		}
		row.holder.EmailVerified = true
		row.tokenDigest = ""
		row.tokenExpires = time.Time{}
		return id, nil
	}
	return 0, goerror.ErrNotFound
}

func (r *memoryRepo) MutateTwoFactor(_ context.Context, holderID int64, fn MutateTwoFactorFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return r.failWith
	}
	row, ok := r.rows[holderID]
	if !ok {
		return goerror.ErrNotFound
	}

	next, err := fn(cloneHolder(row.holder).TwoFactor)
	if err != nil {
		return err
	}
	if !next.Enabled {
		next = entity.TwoFactor{}
	}
	row.holder.TwoFactor = next
	return nil
}

func (r *memoryRepo) put(h entity.Holder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[h.ID] = &memoryRow{holder: h}
}

func (r *memoryRepo) holder(id int64) entity.Holder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *cloneHolder(r.rows[id].holder)
}

type recordingMessaging struct {
	mu     sync.Mutex
	events []EmailVerificationEvent
	err    error
}

func (m *recordingMessaging) PublishEmailVerification(_ context.Context, msg EmailVerificationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, msg)
	return nil
}

func (m *recordingMessaging) sent() []EmailVerificationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.events)
}

type fixture struct {
	uc        *Usecase
	repo      *memoryRepo
	msg       *recordingMessaging
	clock     *clock.Manual
	totp      *otp.TOTP
	encryptor mfa.Encryptor
	bcrypt    hash.Hash
	argon2id  hash.Hash
	redis     *miniredis.Miniredis
	nextID    int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfig))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	snow, err := uid.NewSnowflake()
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := &fixture{
		repo:      newMemoryRepo(),
		msg:       &recordingMessaging{},
		clock:     clock.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		totp:      otp.NewTOTP("PawHaven", 30, 2, libotp.DigitsSix),
		encryptor: mfa.NewAESGCMEncryptor(mfa.NewStaticKeyProvider("test-mfa-secret")),
		bcrypt:    hash.NewBcrypt(4, "pepper"),
		argon2id:  hash.NewArgon2id("pepper", hash.WithArgon2idCost(64, 1, 1)),
		redis:     mr,
		nextID:    1000,
	}

	f.uc = New(Dependency{
		RepoDB:          f.repo,
		RepoMessaging:   f.msg,
		Idempotency:     idempotency.New(rdb),
		Validator:       v,
		Config:          cfg,
		HMAC:            hash.NewHMACSHA256("hmac-secret"),
		Bcrypt:          f.bcrypt,
		Argon2ID:        f.argon2id,
		MFAEncryptor:    f.encryptor,
		MFARecoveryCode: mfa.NewRecoveryCode(10),
		UID:             snow,
		Token:           uid.NewRandomHex(32),
		Totp:            f.totp,
		Clock:           f.clock,
		Instrument:      instrument.NewNoop(),
	})

	return f
}

type holderOption func(*entity.Holder)

func withUnverifiedEmail() holderOption {
	return func(h *entity.Holder) { h.EmailVerified = false }
}

func withStatus(s entity.HolderStatus) holderOption {
	return func(h *entity.Holder) { h.Status = s }
}

// seedHolder stores an active, verified holder with testPassword.
func (f *fixture) seedHolder(t *testing.T, email string, opts ...holderOption) entity.Holder {
	t.Helper()

	pw, err := f.bcrypt.Hash(testPassword)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	f.nextID++
	h := entity.Holder{
		ID:            f.nextID,
		Email:         email,
		FullName:      "Test Holder",
		PasswordHash:  string(pw),
		Status:        entity.HolderStatusActive,
		EmailVerified: true,
	}
	for _, opt := range opts {
		opt(&h)
	}

	f.repo.put(h)
	return h
}

// seedTwoFactor writes an enabled two-factor row directly, the way a finished
// enable would leave it.
func (f *fixture) seedTwoFactor(t *testing.T, holderID int64, codes ...string) {
	t.Helper()

	sealed, err := f.encryptor.Encrypt([]byte(testTOTPSecret), mfa.Scope{HolderID: holderID, Purpose: mfa.PurposeTOTPSecret})
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	digests := make([]string, 0, len(codes))
	for _, c := range codes {
		d, err := f.argon2id.Hash(c)
		if err != nil {
			t.Fatalf("argon2id: %v", err)
		}
		digests = append(digests, string(d))
	}

	if err := f.repo.MutateTwoFactor(context.Background(), holderID, func(entity.TwoFactor) (entity.TwoFactor, error) {
		return entity.TwoFactor{Enabled: true, Secret: sealed, BackupCodes: digests}, nil
	}); err != nil {
		t.Fatalf("seed two-factor: %v", err)
	}
}

func (f *fixture) totpCode(t *testing.T, offset time.Duration) string {
	t.Helper()

	code, err := f.totp.GenerateCode(testTOTPSecret, f.clock.Now().Add(offset))
	if err != nil {
		t.Fatalf("totp code: %v", err)
	}
	return code
}

func assertErrorIs(t *testing.T, got, want error) {
	t.Helper()

	if !errors.Is(got, want) {
		t.Fatalf("expected error %v, got %v", want, got)
	}
}

func assertCode(t *testing.T, err error, want goerror.Code) {
	t.Helper()

	if got := goerror.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (err=%v)", want, got, err)
	}
}
