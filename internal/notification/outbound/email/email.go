package email

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/pawhaven/internal/pkg/instrument"
	"github.com/shandysiswandi/pawhaven/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const retryBase = 250 * time.Millisecond

type Mail struct {
	client  mail.Mail
	from    string
	retries uint64
	ins     instrument.Instrumentation
}

// New wraps client. from is used when a message carries no sender. A failed
// send is retried up to retries times with exponential backoff, since neither
// core NATS nor the in-process bus redelivers.
func New(client mail.Mail, from string, retries uint64, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, from: from, retries: retries, ins: ins}
}

func (m *Mail) Send(ctx context.Context, msg mail.Message) error {
	ctx, span := m.ins.Tracer("notification.outbound.email").Start(ctx, "Send")
	defer span.End()

	if msg.From == "" {
		msg.From = m.from
	}
	span.SetAttributes(attribute.Int("mail.recipients", len(msg.To)+len(msg.Cc)+len(msg.Bcc)))

	attempt := 0
	err := retry.Do(ctx, retry.WithMaxRetries(m.retries, retry.NewExponential(retryBase)), func(ctx context.Context) error {
		attempt++
		if err := m.client.Send(ctx, msg); err != nil {
			slog.WarnContext(ctx, "smtp send failed", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	span.SetAttributes(attribute.Int("mail.attempts", attempt))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
