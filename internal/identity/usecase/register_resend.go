package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
	"github.com/shandysiswandi/pawhaven/internal/pkg/idempotency"
)

const defaultResendDedupe = time.Minute

type RegisterResendInput struct {
	Email string `validate:"required,email"`
}

func (s *Usecase) RegisterResend(ctx context.Context, in RegisterResendInput) error {
	ctx, span := s.startSpan(ctx, "RegisterResend")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	holder, err := s.repoDB.GetHolderByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "email not registered for resend", "email", in.Email)
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get holder by email", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	if holder.EmailVerified || !s.ensureHolderActive(ctx, holder) {
		slog.WarnContext(ctx, "failed to process resend email", "holder_id", holder.ID, "email_verified", holder.EmailVerified)
		return nil
	}

	dedupe := s.cfg.GetSecond("modules.identity.resend_dedupe_seconds")
	if dedupe <= 0 {
		dedupe = defaultResendDedupe
	}

	key := "identity:register_resend:" + strconv.FormatInt(holder.ID, 10)
	err = s.idemp.Exec(ctx, key, func(ctx context.Context) error {
		_, err := s.issueVerificationToken(ctx, holder)
		return err
	}, idempotency.WithStateTTL(dedupe), idempotency.WithLockDuration(dedupe))
	if errors.Is(err, idempotency.ErrAlreadyCompleted) || errors.Is(err, idempotency.ErrAlreadyInProgress) {
		slog.WarnContext(ctx, "resend email deduplicated", "holder_id", holder.ID)
		return nil
	}
	if err != nil {
		if goerror.IsServer(err) {
			return err
		}
		slog.ErrorContext(ctx, "failed to run idempotent resend", "holder_id", holder.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
