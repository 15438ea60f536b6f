package db

import (
	"context"

	"github.com/shandysiswandi/pawhaven/internal/identity/entity"
)

// CreateHolder inserts the holder together with its first verification token.
func (s *DB) CreateHolder(ctx context.Context, in entity.NewHolder) (err error) {
	ctx, span := s.startSpan(ctx, "CreateHolder")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryCreateHolder,
		in.ID,
		in.Email,
		in.FullName,
		in.PasswordHash,
		in.Status,
		in.VerificationToken,
		in.VerificationExpiresAt,
	)
	err = s.mapError(err)
	return err
}
