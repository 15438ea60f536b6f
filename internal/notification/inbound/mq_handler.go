package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/pawhaven/internal/notification/usecase"
	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
	"github.com/shandysiswandi/pawhaven/internal/pkg/instrument"
	"github.com/shandysiswandi/pawhaven/internal/pkg/messaging"
	"github.com/shandysiswandi/pawhaven/internal/pkg/uid"
	"github.com/shandysiswandi/pawhaven/internal/shared/event"
)

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	if cID := messaging.HeaderValue(headers, event.HeaderCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// EmailVerificationNotification delivers the verification email. Payloads
// that can never succeed are dropped; only server failures ask for redelivery.
func (h *MQHandler) EmailVerificationNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "EmailVerificationNotification")
	defer span.End()

	body := msg.Body()

	var payload event.EmailVerificationMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of email verification notification", "subject", msg.Subject(), "error", err)
		return nil
	}

	slog.InfoContext(ctx, "consume: email verification notification", "holder_id", payload.HolderID)

	if err := h.uc.SendEmailVerification(ctx, usecase.SendEmailVerificationInput{
		HolderID:  payload.HolderID,
		Email:     payload.Email,
		FullName:  payload.FullName,
		Token:     payload.Token,
		ExpiresAt: payload.ExpiresAt,
	}); err != nil {
		if !goerror.IsServer(err) {
			slog.WarnContext(ctx, "dropping email verification notification", "holder_id", payload.HolderID, "error", err)
			return nil
		}
		return err
	}

	return nil
}
