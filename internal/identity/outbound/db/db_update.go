package db

import (
	"context"
	"time"

	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
)

// UpdateVerificationToken replaces the holder's token digest. The previous
// token stops matching immediately.
func (s *DB) UpdateVerificationToken(ctx context.Context, id int64, digest string, expiresAt time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateVerificationToken")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryUpdateVerificationToken, id, digest, expiresAt)
	if err != nil {
		err = s.mapError(err)
		return err
	}

	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
		return err
	}

	return nil
}

// ConsumeVerificationToken marks the owner of a live token verified and clears
// the token in one statement. Wrong and expired tokens both yield ErrNotFound.
func (s *DB) ConsumeVerificationToken(ctx context.Context, digest string, now time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "ConsumeVerificationToken")
	defer func() { s.endSpan(span, err) }()

	var id int64
	if err = s.conn.QueryRow(ctx, queryConsumeVerificationToken, digest, now).Scan(&id); err != nil {
		err = s.mapError(err)
		return 0, err
	}

	return id, nil
}
