package usecase

import "github.com/shandysiswandi/pawhaven/internal/pkg/goerror"

var (
	ErrInvalidCredentials      = goerror.NewBusiness("Invalid email or password", goerror.CodeUnauthorized)
	ErrEmailNotVerified        = goerror.NewBusiness("Email not verified", goerror.CodeForbidden)
	ErrInvalidTwoFactorCode    = goerror.NewBusiness("Invalid two-factor code", goerror.CodeUnauthorized)
	ErrInvalidCode             = goerror.NewBusiness("Invalid code", goerror.CodeInvalidInput)
	ErrTwoFactorNotEnabled     = goerror.NewBusiness("Two-factor authentication is not enabled", goerror.CodeConflict)
	ErrTwoFactorAlreadyEnabled = goerror.NewBusiness("Two-factor authentication is already enabled", goerror.CodeConflict)
	ErrInvalidOrExpiredToken   = goerror.NewBusiness("Invalid or expired token", goerror.CodeUnauthorized)
	ErrEmailAlreadyRegistered  = goerror.NewBusiness("Email already registered", goerror.CodeConflict)
	ErrAuthenticationRequired  = goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	ErrAccountNotAllowed       = goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
)
