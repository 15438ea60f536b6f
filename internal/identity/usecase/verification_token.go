package usecase

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/pawhaven/internal/identity/entity"
	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
)

const verificationTokenLength = 64

type IssueVerificationTokenInput struct {
	HolderID int64 `validate:"required,gt=0"`
}

type IssueVerificationTokenOutput struct {
	Token     string
	ExpiresAt time.Time
}

func (s *Usecase) IssueVerificationToken(ctx context.Context, in IssueVerificationTokenInput) (*IssueVerificationTokenOutput, error) {
	ctx, span := s.startSpan(ctx, "IssueVerificationToken")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	holder, err := s.repoDB.GetHolderByID(ctx, in.HolderID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "verification token requested for unknown holder", "holder_id", in.HolderID)
		return nil, goerror.NewBusiness("Holder not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get holder by id", "holder_id", in.HolderID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return s.issueVerificationToken(ctx, holder)
}

// issueVerificationToken overwrites any live token of holder and publishes
// the raw value for delivery. Only the digest is stored. A publish failure is
// returned: the previous link is already dead, so callers must not treat the
// issue as done.
func (s *Usecase) issueVerificationToken(ctx context.Context, holder *entity.Holder) (*IssueVerificationTokenOutput, error) {
	token, digest, err := s.newVerificationToken()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate verification token", "holder_id", holder.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	expiresAt := s.clock.Now().Add(s.verificationTTL())

	if err := s.repoDB.UpdateVerificationToken(ctx, holder.ID, digest, expiresAt); err != nil {
		slog.ErrorContext(ctx, "failed to repo update verification token", "holder_id", holder.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.publishEmailVerification(ctx, holder.ID, holder.Email, holder.FullName, token, expiresAt); err != nil {
		return nil, goerror.NewServer(err)
	}

	return &IssueVerificationTokenOutput{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *Usecase) newVerificationToken() (token, digest string, err error) {
	token = s.token.Generate()
	if len(token) != verificationTokenLength {
		return "", "", errors.New("verification token has unexpected length")
	}

	hashed, err := s.hmac.Hash(token)
	if err != nil {
		return "", "", err
	}

	return token, string(hashed), nil
}

func (s *Usecase) publishEmailVerification(ctx context.Context, holderID int64, email, fullName, token string, expiresAt time.Time) error {
	err := s.repoMessaging.PublishEmailVerification(ctx, EmailVerificationEvent{
		HolderID:  holderID,
		Email:     email,
		FullName:  fullName,
		Token:     token,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish email verification", "holder_id", holderID, "error", err)
	}
	return err
}

type ConsumeVerificationTokenInput struct {
	Token string `validate:"required"`
}

type ConsumeVerificationTokenOutput struct {
	HolderID int64
}

func (s *Usecase) ConsumeVerificationToken(ctx context.Context, in ConsumeVerificationTokenInput) (*ConsumeVerificationTokenOutput, error) {
	ctx, span := s.startSpan(ctx, "ConsumeVerificationToken")
	defer span.End()

	in.Token = strings.ToLower(strings.TrimSpace(in.Token))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if len(in.Token) != verificationTokenLength {
		slog.WarnContext(ctx, "malformed verification token")
		return nil, ErrInvalidOrExpiredToken
	}
	if _, err := hex.DecodeString(in.Token); err != nil {
		slog.WarnContext(ctx, "malformed verification token")
		return nil, ErrInvalidOrExpiredToken
	}

	digest, err := s.hmac.Hash(in.Token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash verification token", "error", err)
		return nil, goerror.NewServer(err)
	}

	holderID, err := s.repoDB.ConsumeVerificationToken(ctx, string(digest), s.clock.Now())
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "verification token not found or expired")
		return nil, ErrInvalidOrExpiredToken
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo consume verification token", "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "email verified", "holder_id", holderID)

	return &ConsumeVerificationTokenOutput{HolderID: holderID}, nil
}
