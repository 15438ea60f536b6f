package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/pawhaven/internal/pkg/clock"
	"github.com/shandysiswandi/pawhaven/internal/pkg/config"
	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
	"github.com/shandysiswandi/pawhaven/internal/pkg/instrument"
	"github.com/shandysiswandi/pawhaven/internal/pkg/mail"
	"github.com/shandysiswandi/pawhaven/internal/pkg/validator"
)

type recordingMail struct {
	sent []mail.Message
	err  error
}

func (m *recordingMail) Send(_ context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newTestUsecase(t *testing.T, repo *recordingMail) *Usecase {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(`
app:
  web: https://pawhaven.test/
modules:
  notification:
    company_name: PawHaven
    support_email: help@pawhaven.test
`))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	uc, err := NewNotification(Dependency{
		Config:     cfg,
		Clock:      clock.NewManual(time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)),
		Validator:  v,
		RepoMail:   repo,
		Instrument: instrument.NewNoop(),
	})
	if err != nil {
		t.Fatalf("new notification: %v", err)
	}

	return uc
}

func TestSendEmailVerification(t *testing.T) {
	token := strings.Repeat("ab", 32)

	t.Run("Success", func(t *testing.T) {
		// Arrange
		repo := &recordingMail{}
		uc := newTestUsecase(t, repo)

		// Act
		err := uc.SendEmailVerification(context.Background(), SendEmailVerificationInput{
			HolderID:  9,
			Email:     "kit@example.com",
			FullName:  "Kit <b>Cat</b>",
			Token:     token,
			ExpiresAt: time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC),
		})

		// Assert
		if err != nil {
			t.Fatalf("send failed: %v", err)
		}
		if len(repo.sent) != 1 {
			t.Fatalf("expected one mail, got %d", len(repo.sent))
		}

		msg := repo.sent[0]
		if len(msg.To) != 1 || msg.To[0] != "kit@example.com" {
			t.Fatalf("unexpected recipients %v", msg.To)
		}
		link := "https://pawhaven.test/verify-email?token=" + token
		if !strings.Contains(msg.TextBody, link) || !strings.Contains(msg.HTMLBody, link) {
			t.Fatal("expected verify link in both bodies")
		}
		if strings.Contains(msg.HTMLBody, "<b>Cat</b>") {
			t.Fatal("expected full name to be escaped in html")
		}
		if !strings.Contains(msg.TextBody, "help@pawhaven.test") {
			t.Fatal("expected support email in text body")
		}
	})

	t.Run("InvalidPayload", func(t *testing.T) {
		repo := &recordingMail{}
		uc := newTestUsecase(t, repo)

		err := uc.SendEmailVerification(context.Background(), SendEmailVerificationInput{
			HolderID: 9,
			Email:    "kit@example.com",
			FullName: "Kit",
			Token:    "short",
		})

		if goerror.CodeOf(err) != goerror.CodeInvalidInput {
			t.Fatalf("expected invalid input, got %v", err)
		}
		if len(repo.sent) != 0 {
			t.Fatal("expected no mail")
		}
	})

	t.Run("MailFailure", func(t *testing.T) {
		repo := &recordingMail{err: errors.New("smtp down")}
		uc := newTestUsecase(t, repo)

		err := uc.SendEmailVerification(context.Background(), SendEmailVerificationInput{
			HolderID:  9,
			Email:     "kit@example.com",
			FullName:  "Kit",
			Token:     token,
			ExpiresAt: time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC),
		})

		if !goerror.IsServer(err) {
			t.Fatalf("expected server error, got %v", err)
		}
	})
}
