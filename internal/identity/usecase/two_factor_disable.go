package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/pawhaven/internal/identity/entity"
	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
	"github.com/shandysiswandi/pawhaven/internal/pkg/mfa"
)

type TwoFactorDisableInput struct {
	HolderID int64  `validate:"required,gt=0"`
	Code     string `validate:"required"`
}

func (s *Usecase) TwoFactorDisable(ctx context.Context, in TwoFactorDisableInput) error {
	ctx, span := s.startSpan(ctx, "TwoFactorDisable")
	defer span.End()

	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	holder, err := s.getAuthenticatedHolder(ctx, in.HolderID)
	if err != nil {
		return err
	}

	usedBackupCode := false
	err = s.mutateTwoFactor(ctx, holder.ID, func(cur entity.TwoFactor) (entity.TwoFactor, error) {
		if cur.State() != entity.TwoFactorStateEnabled {
			return cur, ErrTwoFactorNotEnabled
		}

		if s.matchTOTP(ctx, holder.ID, cur.Secret, in.Code) {
			return entity.TwoFactor{}, nil
		}

		if _, ok := mfa.ConsumeBackupCode(cur.BackupCodes, in.Code, s.argon2id); ok {
			usedBackupCode = true
			return entity.TwoFactor{}, nil
		}

		return cur, ErrInvalidCode
	})
	switch {
	case errors.Is(err, ErrTwoFactorNotEnabled):
		slog.WarnContext(ctx, "two-factor disable requested while disabled", "holder_id", holder.ID)
		return err
	case errors.Is(err, ErrInvalidCode):
		slog.WarnContext(ctx, "invalid code on two-factor disable", "holder_id", holder.ID)
		return err
	case err != nil:
		return err
	}

	if usedBackupCode {
		s.backupCodeCounter.Add(ctx, 1)
	}
	slog.InfoContext(ctx, "two-factor disabled", "holder_id", holder.ID, "backup_code_used", usedBackupCode)

	return nil
}
