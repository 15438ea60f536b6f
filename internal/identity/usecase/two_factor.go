package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/pawhaven/internal/identity/entity"
	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
	"github.com/shandysiswandi/pawhaven/internal/pkg/mfa"
)

type secondFactorResult struct {
	BackupCodeUsed       bool
	RemainingBackupCodes int
}

// verifySecondFactor checks code against the holder's TOTP secret first and
// falls back to the backup-code ledger. Both run on the row read under the
// holder lock, so a concurrent disable or consumption is always observed and
// the same backup code cannot pass twice. A TOTP match leaves the row as is.
func (s *Usecase) verifySecondFactor(ctx context.Context, holder *entity.Holder, code string) (*secondFactorResult, error) {
	if holder.TwoFactor.State() != entity.TwoFactorStateEnabled {
		slog.WarnContext(ctx, "second factor submitted while two-factor is disabled", "holder_id", holder.ID)
		return nil, ErrInvalidCode
	}

	var res secondFactorResult
	err := s.mutateTwoFactor(ctx, holder.ID, func(cur entity.TwoFactor) (entity.TwoFactor, error) {
		if cur.State() != entity.TwoFactorStateEnabled {
			return cur, ErrInvalidCode
		}

		if s.matchTOTP(ctx, holder.ID, cur.Secret, code) {
			res = secondFactorResult{RemainingBackupCodes: len(cur.BackupCodes)}
			return cur, nil
		}

		if _, ok := mfa.NormalizeBackupCode(code); !ok {
			return cur, ErrInvalidCode
		}

		updated, ok := mfa.ConsumeBackupCode(cur.BackupCodes, code, s.argon2id)
		if !ok {
			return cur, ErrInvalidCode
		}

		cur.BackupCodes = updated
		res = secondFactorResult{BackupCodeUsed: true, RemainingBackupCodes: len(updated)}
		return cur, nil
	})
	if errors.Is(err, ErrInvalidCode) {
		slog.WarnContext(ctx, "invalid second factor code", "holder_id", holder.ID)
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, err
	}

	if res.BackupCodeUsed {
		s.backupCodeCounter.Add(ctx, 1)
		slog.InfoContext(ctx, "backup code consumed", "holder_id", holder.ID, "remaining", res.RemainingBackupCodes)
	}

	return &res, nil
}

// matchTOTP opens the sealed secret and validates code against it. A secret
// that cannot be opened only disables the TOTP path; backup codes still work.
func (s *Usecase) matchTOTP(ctx context.Context, holderID int64, sealed []byte, code string) bool {
	if len(sealed) == 0 {
		return false
	}

	secret, err := s.mfaEncryptor.Decrypt(sealed, s.secretScope(holderID))
	if err != nil {
		slog.ErrorContext(ctx, "failed to decrypt totp secret", "holder_id", holderID, "error", err)
		return false
	}

	return s.totp.Validate(code, string(secret), s.clock.Now())
}

// mutateTwoFactor runs fn under the holder row lock. Business errors from fn
// pass through untouched.
func (s *Usecase) mutateTwoFactor(ctx context.Context, holderID int64, fn MutateTwoFactorFunc) error {
	err := s.repoDB.MutateTwoFactor(ctx, holderID, fn)
	if err == nil {
		return nil
	}

	var gerr *goerror.Error
	if errors.As(err, &gerr) && !goerror.IsServer(err) {
		return err
	}

	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "holder not found for two-factor update", "holder_id", holderID)
		return ErrAuthenticationRequired
	}

	slog.ErrorContext(ctx, "failed to repo mutate two-factor", "holder_id", holderID, "error", err)
	return goerror.NewServer(err)
}
