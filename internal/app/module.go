package app

import (
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/pawhaven/internal/identity"
	"github.com/shandysiswandi/pawhaven/internal/notification"
)

func (a *App) initModules() error {
	modules := []struct {
		name  string
		setup func() error
	}{
		{"identity", a.setupIdentity},
		{"notification", a.setupNotification},
	}

	for _, m := range modules {
		if !a.config.GetBool("modules." + m.name + ".enabled") {
			slog.Info("module disabled", "module", m.name)
			continue
		}
		if err := m.setup(); err != nil {
			return fmt.Errorf("module %s: %w", m.name, err)
		}
		slog.Info("module ready", "module", m.name)
	}

	return nil
}

func (a *App) setupIdentity() error {
	return identity.New(identity.Dependency{
		DBConn:          a.dbConn,
		Router:          a.router,
		Idempotency:     a.idemp,
		Messaging:       a.messaging,
		Config:          a.config,
		Instrument:      a.ins,
		UID:             a.uid,
		Token:           a.token,
		HMAC:            a.hmac,
		Bcrypt:          a.bcrypt,
		Argon2ID:        a.argon2id,
		MFAEncryptor:    a.mfaEncryptor,
		MFARecoveryCode: a.mfaRecoveryCode,
		Clock:           a.clock,
		Totp:            a.totp,
		Validator:       a.validator,
		AccessJWT:       a.accessJWT,
		ChallengeJWT:    a.challengeJWT,
	})
}

func (a *App) setupNotification() error {
	return notification.New(notification.Dependency{
		Ctx:        a.ctx,
		Messaging:  a.messaging,
		Config:     a.config,
		Instrument: a.ins,
		UUID:       a.uuid,
		Clock:      a.clock,
		Goroutine:  a.goroutine,
		Validator:  a.validator,
		Mail:       a.mail,
	})
}
