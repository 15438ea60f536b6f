package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	libOTP "github.com/pquerna/otp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/shandysiswandi/pawhaven/internal/identity"
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
	"github.com/shandysiswandi/pawhaven/internal/pkg/pgmigrate"
	"github.com/shandysiswandi/pawhaven/internal/pkg/router"
	"github.com/shandysiswandi/pawhaven/internal/pkg/uid"
	"github.com/shandysiswandi/pawhaven/internal/pkg/validator"
)

const (
	// verificationTokenBytes gives a 64 character hex token.
	verificationTokenBytes = 32

	// challengeAudience keeps challenge tokens unusable as access tokens.
	challengeAudience = "mfa-challenge"

	pingTimeout = 5 * time.Second
)

var errMissingMFASecret = errors.New("mfa.secret is empty")

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	if os.Getenv("LOCAL") == "true" {
		return "./config/config.yaml"
	}
	return "/config/config.yaml"
}

func (a *App) initConfig() error {
	cfg, err := config.NewViper(configPath())
	if err != nil {
		return err
	}
	a.config = cfg
	a.onClose("config", func(context.Context) error { return cfg.Close() })

	if tz := cfg.GetString("app.tz"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("load timezone %q: %w", tz, err)
		}
		time.Local = loc
	}

	return nil
}

func (a *App) initInstrument() error {
	ins, err := instrument.New(a.ctx, &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		LogLevel:         a.config.GetString("instrument.log_level"),
	})
	if err != nil {
		return err
	}
	a.ins = ins
	a.onClose("instrument", ins.Shutdown)

	return nil
}

func (a *App) initLibraries() error {
	v, err := validator.NewV10Validator()
	if err != nil {
		return fmt.Errorf("validator: %w", err)
	}

	snow, err := uid.NewSnowflake()
	if err != nil {
		return fmt.Errorf("snowflake: %w", err)
	}

	secret := a.config.GetString("mfa.secret")
	if secret == "" {
		return errMissingMFASecret
	}

	a.validator = v
	a.uid = snow
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.token = uid.NewRandomHex(verificationTokenBytes)
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))

	a.hmac = hash.NewHMACSHA256(a.config.GetString("hash.hmac.secret"))
	a.bcrypt = hash.NewBcrypt(a.config.GetInt("hash.bcrypt.cost"), a.config.GetString("hash.bcrypt.pepper"))
	a.argon2id = hash.NewArgon2id(
		a.config.GetString("hash.argon2id.pepper"),
		hash.WithArgon2idCost(
			uint32(a.config.GetUint("hash.argon2id.memory_kib")),  //nolint:gosec // bounded by config
			uint32(a.config.GetUint("hash.argon2id.iterations")),  //nolint:gosec // bounded by config
			uint8(a.config.GetUint("hash.argon2id.parallelism")), //nolint:gosec // bounded by config
		),
	)

	skew := uint(otp.DefaultSkew)
	if a.config.Has("mfa.totp.skew") {
		skew = a.config.GetUint("mfa.totp.skew")
	}
	a.totp = otp.NewTOTP(
		a.config.GetString("mfa.totp.issuer"),
		a.config.GetUint("mfa.totp.period"),
		skew,
		libOTP.DigitsSix,
	)
	a.mfaEncryptor = mfa.NewAESGCMEncryptor(mfa.NewStaticKeyProvider(secret))
	a.mfaRecoveryCode = mfa.NewRecoveryCode(a.config.GetInt("mfa.backup_code.count"))

	return nil
}

func (a *App) newJWT(audience, ttlKey string) (jwt.JWT, error) {
	return jwt.NewHS512(jwt.Config{
		Secret:   []byte(a.config.GetString("jwt.secret")),
		Issuer:   a.config.GetString("jwt.issuer"),
		Audience: audience,
		TTL:      a.config.GetMinute(ttlKey),
		Clock:    a.clock,
		UUID:     a.uuid,
	})
}

func (a *App) initJWT() error {
	access, err := a.newJWT(a.config.GetString("jwt.audience"), "jwt.ttl_minutes")
	if err != nil {
		return fmt.Errorf("access token: %w", err)
	}

	challenge, err := a.newJWT(challengeAudience, "jwt.challenge_ttl_minutes")
	if err != nil {
		return fmt.Errorf("challenge token: %w", err)
	}

	a.accessJWT = access
	a.challengeJWT = challenge

	return nil
}

func (a *App) initDatabase() error {
	pc, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		return fmt.Errorf("parse database.url: %w", err)
	}

	pc.MaxConns = int32(a.config.GetInt("database.pool.max_conns")) //nolint:gosec // bounded by config
	pc.MinConns = int32(a.config.GetInt("database.pool.min_conns")) //nolint:gosec // bounded by config
	pc.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	pc.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	pc.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, pc)
	if err != nil {
		return err
	}
	a.dbConn = pool
	a.onClose("postgres", func(context.Context) error {
		pool.Close()
		return nil
	})

	ctx, cancel := context.WithTimeout(a.ctx, pingTimeout)
	defer cancel()

	return pool.Ping(ctx)
}

func (a *App) initMigration() error {
	if !a.config.GetBool("database.migrate") || !a.config.GetBool("modules.identity.enabled") {
		return nil
	}

	if err := pgmigrate.Up(a.ctx, a.dbConn, identity.Migrations()); err != nil {
		return fmt.Errorf("identity: %w", err)
	}

	return nil
}

func (a *App) initCache() error {
	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	if err != nil {
		return fmt.Errorf("parse redis.url: %w", err)
	}

	rdb := redis.NewClient(opt)
	a.cacheConn = rdb
	a.idemp = idempotency.New(rdb)
	a.onClose("redis", func(context.Context) error { return rdb.Close() })

	ctx, cancel := context.WithTimeout(a.ctx, pingTimeout)
	defer cancel()

	return rdb.Ping(ctx).Err()
}

func (a *App) initMail() error {
	m, err := mail.NewSMTP(mail.SMTPConfig{
		Host:     a.config.GetString("mail.host"),
		Port:     a.config.GetInt("mail.port"),
		Username: a.config.GetString("mail.username"),
		Password: a.config.GetString("mail.password"),
		From:     a.config.GetString("mail.from"),
		TLS:      a.config.GetString("mail.tls"),
		Timeout:  a.config.GetSecond("mail.timeout_seconds"),
	})
	if err != nil {
		return err
	}
	a.mail = m

	return nil
}

func (a *App) initMessaging() error {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(driver, messaging.FactoryOptions{
		NATS: messaging.NATSConfig{
			URL:  a.config.GetString("messaging.nats.url"),
			Name: a.config.GetString("messaging.nats.name"),
			Options: []nats.Option{
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.PingInterval(a.config.GetSecond("messaging.nats.ping_interval_seconds")),
				nats.MaxPingsOutstanding(a.config.GetInt("messaging.nats.max_pings_outstanding")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		Memory: messaging.MemoryConfig{
			Buffer: a.config.GetInt("messaging.memory.buffer"),
		},
	})
	if err != nil {
		return fmt.Errorf("driver %q: %w", driver, err)
	}
	a.messaging = client
	a.onClose("messaging", func(context.Context) error { return client.Close() })

	return nil
}

func (a *App) initHTTPServer() error {
	a.router = router.NewRouter(router.Config{
		Config:          a.config,
		UUID:            a.uuid,
		JWT:             a.accessJWT,
		Instrument:      a.ins,
		PublicEndpoints: identity.PublicEndpoints(),
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   a.config.GetArray("app.server.cors"),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Correlation-ID"},
		ExposedHeaders:   []string{"X-Correlation-ID", "Retry-After"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           handler,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}

	return nil
}
