package usecase

import (
	"context"
	"strings"

	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
)

type TwoFactorVerifyInput struct {
	HolderID int64  `validate:"required,gt=0"`
	Code     string `validate:"required"`
}

type TwoFactorVerifyOutput struct {
	BackupCodeUsed       bool
	RemainingBackupCodes int
}

func (s *Usecase) TwoFactorVerify(ctx context.Context, in TwoFactorVerifyInput) (*TwoFactorVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "TwoFactorVerify")
	defer span.End()

	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	holder, err := s.getAuthenticatedHolder(ctx, in.HolderID)
	if err != nil {
		return nil, err
	}

	res, err := s.verifySecondFactor(ctx, holder, in.Code)
	if err != nil {
		return nil, err
	}

	return &TwoFactorVerifyOutput{
		BackupCodeUsed:       res.BackupCodeUsed,
		RemainingBackupCodes: res.RemainingBackupCodes,
	}, nil
}
