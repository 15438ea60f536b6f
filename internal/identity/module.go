package identity

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/pawhaven/internal/identity/inbound"
	"github.com/shandysiswandi/pawhaven/internal/identity/outbound/db"
	"github.com/shandysiswandi/pawhaven/internal/identity/outbound/mq"
	"github.com/shandysiswandi/pawhaven/internal/identity/usecase"
	"github.com/shandysiswandi/pawhaven/internal/pkg/clock"
	"github.com/shandysiswandi/pawhaven/internal/pkg/config"
	"github.com/shandysiswandi/pawhaven/internal/pkg/hash"
	"github.com/shandysiswandi/pawhaven/internal/pkg/idempotency"
	"github.com/shandysiswandi/pawhaven/internal/pkg/instrument"
	"github.com/shandysiswandi/pawhaven/internal/pkg/jwt"
	"github.com/shandysiswandi/pawhaven/internal/pkg/messaging"
	"github.com/shandysiswandi/pawhaven/internal/pkg/mfa"
	"github.com/shandysiswandi/pawhaven/internal/pkg/otp"
	"github.com/shandysiswandi/pawhaven/internal/pkg/pgmigrate"
	"github.com/shandysiswandi/pawhaven/internal/pkg/router"
	"github.com/shandysiswandi/pawhaven/internal/pkg/uid"
	"github.com/shandysiswandi/pawhaven/internal/pkg/validator"
)

type Dependency struct {
	DBConn          *pgxpool.Pool              `validate:"required"`
	Router          *router.Router             `validate:"required"`
	Idempotency     idempotency.Idempotency    `validate:"required"`
	Messaging       messaging.Messaging        `validate:"required"`
	Config          config.Config              `validate:"required"`
	Instrument      instrument.Instrumentation `validate:"required"`
	UID             uid.NumberID               `validate:"required"`
	Token           uid.StringID               `validate:"required"`
	HMAC            hash.Hash                  `validate:"required"`
	Bcrypt          hash.Hash                  `validate:"required"`
	Argon2ID        hash.Hash                  `validate:"required"`
	MFAEncryptor    mfa.Encryptor              `validate:"required"`
	MFARecoveryCode mfa.RecoveryCodeGenerator  `validate:"required"`
	Clock           clock.Clocker              `validate:"required"`
	Totp            otp.OTP                    `validate:"required"`
	Validator       validator.Validator        `validate:"required"`
	AccessJWT       jwt.JWT                    `validate:"required"`
	ChallengeJWT    jwt.JWT                    `validate:"required"`
}

// Migrations is the schema the identity module expects.
func Migrations() pgmigrate.Source {
	return db.Migrations
}

// PublicEndpoints lists the identity routes that skip access-token checks.
func PublicEndpoints() map[string][]string {
	return inbound.PublicEndpoints()
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repoDB := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:          repoDB,
		RepoMessaging:   repoMsg,
		Idempotency:     dep.Idempotency,
		Validator:       dep.Validator,
		Config:          dep.Config,
		HMAC:            dep.HMAC,
		Bcrypt:          dep.Bcrypt,
		Argon2ID:        dep.Argon2ID,
		MFAEncryptor:    dep.MFAEncryptor,
		MFARecoveryCode: dep.MFARecoveryCode,
		UID:             dep.UID,
		Token:           dep.Token,
		Totp:            dep.Totp,
		Clock:           dep.Clock,
		Instrument:      dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.AccessJWT, dep.ChallengeJWT)

	return nil
}
