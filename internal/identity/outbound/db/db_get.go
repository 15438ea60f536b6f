package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/pawhaven/internal/identity/entity"
)

func (s *DB) GetHolderByEmail(ctx context.Context, email string) (_ *entity.Holder, err error) {
	ctx, span := s.startSpan(ctx, "GetHolderByEmail")
	defer func() { s.endSpan(span, err) }()

	holder, err := scanHolder(s.conn.QueryRow(ctx, queryGetHolderByEmail, email))
	if err != nil {
		return nil, s.mapError(err)
	}

	return holder, nil
}

func (s *DB) GetHolderByID(ctx context.Context, id int64) (_ *entity.Holder, err error) {
	ctx, span := s.startSpan(ctx, "GetHolderByID")
	defer func() { s.endSpan(span, err) }()

	holder, err := scanHolder(s.conn.QueryRow(ctx, queryGetHolderByID, id))
	if err != nil {
		return nil, s.mapError(err)
	}

	return holder, nil
}

func scanHolder(row pgx.Row) (*entity.Holder, error) {
	var h entity.Holder
	if err := row.Scan(
		&h.ID,
		&h.Email,
		&h.FullName,
		&h.PasswordHash,
		&h.Status,
		&h.EmailVerified,
		&h.TwoFactor.Enabled,
		&h.TwoFactor.Secret,
		&h.TwoFactor.BackupCodes,
		&h.CreatedAt,
		&h.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &h, nil
}
