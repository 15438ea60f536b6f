package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/pawhaven/internal/identity/usecase"
	"github.com/shandysiswandi/pawhaven/internal/pkg/instrument"
	"github.com/shandysiswandi/pawhaven/internal/pkg/messaging"
	"github.com/shandysiswandi/pawhaven/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishEmailVerification(ctx context.Context, msg usecase.EmailVerificationEvent) error {
	ctx, span := m.ins.Tracer("identity.outbound.mq").Start(ctx, "PublishEmailVerification")
	defer span.End()

	body, err := json.Marshal(event.EmailVerificationMessage{
		HolderID:  msg.HolderID,
		Email:     msg.Email,
		FullName:  msg.FullName,
		Token:     msg.Token,
		ExpiresAt: msg.ExpiresAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.EmailVerificationDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: event.HeaderCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
