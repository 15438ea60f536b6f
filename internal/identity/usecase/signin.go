package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/pawhaven/internal/identity/entity"
	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
)

type SignInInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// SignInOutput carries either a completed sign-in (Profile) or a pending
// second round (TwoFactorRequired with HolderID).
type SignInOutput struct {
	TwoFactorRequired bool
	HolderID          int64
	Profile           *entity.Profile
}

func (s *Usecase) SignIn(ctx context.Context, in SignInInput) (*SignInOutput, error) {
	ctx, span := s.startSpan(ctx, "SignIn")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	holder, err := s.repoDB.GetHolderByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "sign-in for unknown email", "email", in.Email)
		s.recordSignIn(ctx, "invalid_credentials")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get holder by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.ensureHolderActive(ctx, holder) {
		s.recordSignIn(ctx, "invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	if !s.bcrypt.Verify(holder.PasswordHash, in.Password) {
		slog.WarnContext(ctx, "sign-in with wrong password", "holder_id", holder.ID)
		s.recordSignIn(ctx, "invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	if !holder.EmailVerified {
		slog.WarnContext(ctx, "sign-in with unverified email", "holder_id", holder.ID)
		s.recordSignIn(ctx, "email_not_verified")
		return nil, ErrEmailNotVerified
	}

	if holder.TwoFactor.State() == entity.TwoFactorStateEnabled {
		s.recordSignIn(ctx, "two_factor_required")
		return &SignInOutput{TwoFactorRequired: true, HolderID: holder.ID}, nil
	}

	profile := holder.Profile()
	s.recordSignIn(ctx, "success")

	return &SignInOutput{HolderID: holder.ID, Profile: &profile}, nil
}
