package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/pawhaven/internal/identity/entity"
	"github.com/shandysiswandi/pawhaven/internal/identity/usecase"
)

// MutateTwoFactor locks the holder row, hands the current two-factor fields
// to fn and writes back what fn returns. An error from fn rolls back.
func (s *DB) MutateTwoFactor(ctx context.Context, holderID int64, fn usecase.MutateTwoFactorFunc) (err error) {
	ctx, span := s.startSpan(ctx, "MutateTwoFactor")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	var cur entity.TwoFactor
	if err = tx.QueryRow(ctx, queryLockTwoFactor, holderID).Scan(
		&cur.Enabled,
		&cur.Secret,
		&cur.BackupCodes,
	); err != nil {
		err = s.mapError(err)
		return err
	}

	next, err := fn(cur)
	if err != nil {
		return err
	}

	if !next.Enabled {
		next = entity.TwoFactor{}
	}

	if _, err = tx.Exec(ctx, queryUpdateTwoFactor,
		holderID,
		next.Enabled,
		next.Secret,
		next.BackupCodes,
	); err != nil {
		err = s.mapError(err)
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		err = s.mapError(err)
		return err
	}

	return nil
}
