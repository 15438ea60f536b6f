package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/pawhaven/internal/identity/entity"
	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
)

type SignInTwoFactorInput struct {
	HolderID int64  `validate:"required,gt=0"`
	Code     string `validate:"required"`
}

type SignInTwoFactorOutput struct {
	Profile              entity.Profile
	BackupCodeUsed       bool
	RemainingBackupCodes int
}

func (s *Usecase) SignInTwoFactor(ctx context.Context, in SignInTwoFactorInput) (*SignInTwoFactorOutput, error) {
	ctx, span := s.startSpan(ctx, "SignInTwoFactor")
	defer span.End()

	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	holder, err := s.repoDB.GetHolderByID(ctx, in.HolderID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "second round sign-in for unknown holder", "holder_id", in.HolderID)
		s.recordSignIn(ctx, "invalid_two_factor_code")
		return nil, ErrInvalidTwoFactorCode
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get holder by id", "holder_id", in.HolderID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.ensureHolderActive(ctx, holder) || !holder.EmailVerified {
		s.recordSignIn(ctx, "invalid_two_factor_code")
		return nil, ErrInvalidTwoFactorCode
	}

	res, err := s.verifySecondFactor(ctx, holder, in.Code)
	if err != nil {
		if goerror.IsServer(err) {
			return nil, err
		}
		s.recordSignIn(ctx, "invalid_two_factor_code")
		return nil, ErrInvalidTwoFactorCode
	}

	profile := holder.Profile()
	profile.RemainingBackupCodes = res.RemainingBackupCodes
	s.recordSignIn(ctx, "success")

	return &SignInTwoFactorOutput{
		Profile:              profile,
		BackupCodeUsed:       res.BackupCodeUsed,
		RemainingBackupCodes: res.RemainingBackupCodes,
	}, nil
}
