// Package app assembles the PawHaven service: configuration, shared
// libraries, infrastructure connections, the HTTP surface and the feature
// modules that sit on top of them.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/pawhaven/internal/pkg/clock"
	"github.com/shandysiswandi/pawhaven/internal/pkg/config"
	"github.com/shandysiswandi/pawhaven/internal/pkg/goroutine"
	"github.com/shandysiswandi/pawhaven/internal/pkg/hash"
	"github.com/shandysiswandi/pawhaven/internal/pkg/idempotency"
	"github.com/shandysiswandi/pawhaven/internal/pkg/instrument"
	"github.com/shandysiswandi/pawhaven/internal/pkg/jwt"
	"github.com/shandysiswandi/pawhaven/internal/pkg/mail"
	"github.com/shandysiswandi/pawhaven/internal/pkg/messaging"
	"github.com/shandysiswandi/pawhaven/internal/pkg/mfa"
	"github.com/shandysiswandi/pawhaven/internal/pkg/otp"
	"github.com/shandysiswandi/pawhaven/internal/pkg/router"
	"github.com/shandysiswandi/pawhaven/internal/pkg/uid"
	"github.com/shandysiswandi/pawhaven/internal/pkg/validator"
)

// closer releases one resource during shutdown.
type closer struct {
	name string
	fn   func(context.Context) error
}

// App owns every long-lived dependency of the process.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	config config.Config
	ins    instrument.Instrumentation

	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID
	token     uid.StringID

	hmac     hash.Hash
	argon2id hash.Hash
	bcrypt   hash.Hash

	totp            otp.OTP
	accessJWT       jwt.JWT
	challengeJWT    jwt.JWT
	mfaEncryptor    mfa.Encryptor
	mfaRecoveryCode mfa.RecoveryCodeGenerator

	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	mail      mail.Mail
	messaging messaging.Messaging

	router     *router.Router
	httpServer *http.Server

	closers []closer
}

// New builds the application. Resources opened before a failing step are
// released before the error is returned.
func New(ctx context.Context) (*App, error) {
	ctx, cancel := context.WithCancel(ctx)
	a := &App{ctx: ctx, cancel: cancel}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"config", a.initConfig},
		{"instrument", a.initInstrument},
		{"libraries", a.initLibraries},
		{"jwt", a.initJWT},
		{"database", a.initDatabase},
		{"migration", a.initMigration},
		{"cache", a.initCache},
		{"mail", a.initMail},
		{"messaging", a.initMessaging},
		{"http server", a.initHTTPServer},
		{"modules", a.initModules},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			a.release(context.Background())
			return nil, fmt.Errorf("init %s: %w", step.name, err)
		}
	}

	slog.InfoContext(ctx, "application initialized", "closers", len(a.closers))

	return a, nil
}

// onClose registers fn to run at shutdown. Closers run in reverse order.
func (a *App) onClose(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

func (a *App) release(ctx context.Context) {
	a.cancel()

	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resource", "name", c.name, "error", err)
		}
	}
	a.closers = nil
}
