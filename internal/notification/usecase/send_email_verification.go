package usecase

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
	"github.com/shandysiswandi/pawhaven/internal/pkg/mail"
)

const subjectEmailVerification = "Verify your email address"

type SendEmailVerificationInput struct {
	HolderID  int64     `validate:"required,gt=0"`
	Email     string    `validate:"required,email"`
	FullName  string    `validate:"required"`
	Token     string    `validate:"required,len=64,hexadecimal"`
	ExpiresAt time.Time `validate:"required"`
}

func (s *Usecase) SendEmailVerification(ctx context.Context, in SendEmailVerificationInput) error {
	ctx, span := s.startSpan(ctx, "SendEmailVerification")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "holder_id", in.HolderID, "error", err)
		return goerror.NewInvalidInput(err)
	}

	data := s.baseEmailTemplateData()
	data["full_name"] = in.FullName
	data["verify_url"] = strings.TrimRight(s.cfg.GetString("app.web"), "/") + "/verify-email?token=" + url.QueryEscape(in.Token)
	data["expires_at"] = in.ExpiresAt.UTC().Format(time.RFC1123)

	html, text, err := s.render("email_verification", data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render email verification", "holder_id", in.HolderID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoMail.Send(ctx, mail.Message{
		To:       []string{in.Email},
		Subject:  subjectEmailVerification,
		TextBody: text,
		HTMLBody: html,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to send email verification", "holder_id", in.HolderID, "error", err)
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "email verification sent", "holder_id", in.HolderID)

	return nil
}
