package inbound

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/pawhaven/internal/identity/entity"
	"github.com/shandysiswandi/pawhaven/internal/identity/usecase"
	"github.com/shandysiswandi/pawhaven/internal/pkg/jwt"
	"github.com/shandysiswandi/pawhaven/internal/pkg/router"
)

type uc interface {
	SignIn(ctx context.Context, in usecase.SignInInput) (*usecase.SignInOutput, error)
	SignInTwoFactor(ctx context.Context, in usecase.SignInTwoFactorInput) (*usecase.SignInTwoFactorOutput, error)

	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error)
	RegisterResend(ctx context.Context, in usecase.RegisterResendInput) error
	ConsumeVerificationToken(ctx context.Context, in usecase.ConsumeVerificationTokenInput) (*usecase.ConsumeVerificationTokenOutput, error)

	TwoFactorSetup(ctx context.Context, in usecase.TwoFactorSetupInput) (*usecase.TwoFactorSetupOutput, error)
	TwoFactorEnable(ctx context.Context, in usecase.TwoFactorEnableInput) error
	TwoFactorDisable(ctx context.Context, in usecase.TwoFactorDisableInput) error
	TwoFactorVerify(ctx context.Context, in usecase.TwoFactorVerifyInput) (*usecase.TwoFactorVerifyOutput, error)

	Profile(ctx context.Context, in usecase.ProfileInput) (*entity.Profile, error)
}

// PublicEndpoints lists the routes reachable without an access token. The
// router needs it before any endpoint is registered.
func PublicEndpoints() map[string][]string {
	return map[string][]string{
		http.MethodPost: {
			"/api/v1/identity/register",
			"/api/v1/identity/register/resend",
			"/api/v1/identity/register/verify",
			"/api/v1/identity/signin",
			"/api/v1/identity/signin/2fa",
		},
	}
}

// RegisterHTTPEndpoint mounts the identity routes. access issues session
// tokens; challenge issues and checks the short-lived second-round tokens.
func RegisterHTTPEndpoint(r *router.Router, uc uc, access, challenge jwt.JWT) {
	end := &HTTPEndpoint{uc: uc, access: access, challenge: challenge}

	// Registration & email verification
	r.POST("/api/v1/identity/register", end.Register)
	r.POST("/api/v1/identity/register/resend", end.RegisterResend)
	r.POST("/api/v1/identity/register/verify", end.RegisterVerify)

	// Sign-in
	r.POST("/api/v1/identity/signin", end.SignIn)
	r.POST("/api/v1/identity/signin/2fa", end.SignInTwoFactor)

	// Two-factor (need authenticated)
	r.POST("/api/v1/identity/2fa/setup", end.TwoFactorSetup)
	r.POST("/api/v1/identity/2fa/enable", end.TwoFactorEnable)
	r.POST("/api/v1/identity/2fa/disable", end.TwoFactorDisable)
	r.POST("/api/v1/identity/2fa/verify", end.TwoFactorVerify)

	// Profile (need authenticated)
	r.GET("/api/v1/identity/profile", end.Profile)
}
