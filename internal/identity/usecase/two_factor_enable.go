package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/pawhaven/internal/identity/entity"
	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
)

type TwoFactorEnableInput struct {
	HolderID    int64    `validate:"required,gt=0"`
	Secret      string   `validate:"required,totpsecret"`
	Code        string   `validate:"required"`
	BackupCodes []string `validate:"required,min=1,max=20,unique,dive,backupcode"`
}

func (s *Usecase) TwoFactorEnable(ctx context.Context, in TwoFactorEnableInput) error {
	ctx, span := s.startSpan(ctx, "TwoFactorEnable")
	defer span.End()

	in.Secret = strings.ToUpper(strings.TrimSpace(in.Secret))
	in.Code = strings.TrimSpace(in.Code)
	in.BackupCodes = lo.Map(in.BackupCodes, func(c string, _ int) string {
		return strings.ToUpper(strings.TrimSpace(c))
	})

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	holder, err := s.getAuthenticatedHolder(ctx, in.HolderID)
	if err != nil {
		return err
	}

	if holder.TwoFactor.State() == entity.TwoFactorStateEnabled {
		slog.WarnContext(ctx, "two-factor enable requested while enabled", "holder_id", holder.ID)
		return ErrTwoFactorAlreadyEnabled
	}

	if !s.totp.Validate(in.Code, in.Secret, s.clock.Now()) {
		slog.WarnContext(ctx, "invalid totp code on enable", "holder_id", holder.ID)
		return ErrInvalidCode
	}

	sealed, err := s.mfaEncryptor.Encrypt([]byte(in.Secret), s.secretScope(holder.ID))
	if err != nil {
		slog.ErrorContext(ctx, "failed to encrypt totp secret", "holder_id", holder.ID, "error", err)
		return goerror.NewServer(err)
	}

	digests := make([]string, 0, len(in.BackupCodes))
	for _, code := range in.BackupCodes {
		digest, err := s.argon2id.Hash(code)
		if err != nil {
			slog.ErrorContext(ctx, "failed to hash backup code", "holder_id", holder.ID, "error", err)
			return goerror.NewServer(err)
		}
		digests = append(digests, string(digest))
	}

	if err := s.mutateTwoFactor(ctx, holder.ID, func(cur entity.TwoFactor) (entity.TwoFactor, error) {
		if cur.Enabled {
			return cur, ErrTwoFactorAlreadyEnabled
		}
		return entity.TwoFactor{Enabled: true, Secret: sealed, BackupCodes: digests}, nil
	}); err != nil {
		return err
	}

	slog.InfoContext(ctx, "two-factor enabled", "holder_id", holder.ID, "backup_code_count", len(digests))

	return nil
}
