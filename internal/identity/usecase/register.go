package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/pawhaven/internal/identity/entity"
	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
)

type RegisterInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,password"`
	FullName string `validate:"required,min=2,max=100,alphaspace"`
}

type RegisterOutput struct {
	HolderID int64
}

func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	_, err := s.repoDB.GetHolderByEmail(ctx, in.Email)
	if err == nil {
		slog.WarnContext(ctx, "register with existing email", "email", in.Email)
		return nil, ErrEmailAlreadyRegistered
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get holder by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	hashedPassword, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	token, digest, err := s.newVerificationToken()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate verification token", "error", err)
		return nil, goerror.NewServer(err)
	}

	holder := entity.NewHolder{
		ID:                    s.uid.Generate(),
		Email:                 in.Email,
		FullName:              in.FullName,
		PasswordHash:          string(hashedPassword),
		Status:                entity.HolderStatusActive,
		VerificationToken:     digest,
		VerificationExpiresAt: s.clock.Now().Add(s.verificationTTL()),
	}

	err = s.repoDB.CreateHolder(ctx, holder)
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "register lost race on email", "email", in.Email)
		return nil, ErrEmailAlreadyRegistered
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create holder", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	// the holder row is committed; a lost event is recovered through resend
	_ = s.publishEmailVerification(ctx, holder.ID, holder.Email, holder.FullName, token, holder.VerificationExpiresAt)

	return &RegisterOutput{HolderID: holder.ID}, nil
}
