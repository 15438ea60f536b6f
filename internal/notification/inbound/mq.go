package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/pawhaven/internal/notification/usecase"
	"github.com/shandysiswandi/pawhaven/internal/pkg/config"
	"github.com/shandysiswandi/pawhaven/internal/pkg/goroutine"
	"github.com/shandysiswandi/pawhaven/internal/pkg/instrument"
	"github.com/shandysiswandi/pawhaven/internal/pkg/messaging"
	"github.com/shandysiswandi/pawhaven/internal/pkg/uid"
	"github.com/shandysiswandi/pawhaven/internal/shared/event"
)

type uc interface {
	SendEmailVerification(ctx context.Context, in usecase.SendEmailVerificationInput) error
}

// RegisterMQConsumer starts one background consumer per enabled name in
// modules.notification.consumer_names. An empty list enables all of them.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Consumer,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) error {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.notification.consumer_names")

	var consumers = []struct {
		name       string
		topic      string // destination where publisher sent message
		queueGroup string
		handler    messaging.Handler
	}{
		{
			name:       event.EmailVerificationDestinationConsumerNotification,
			topic:      event.EmailVerificationDestination,
			queueGroup: event.EmailVerificationDestinationConsumerNotification,
			handler:    mqHandler.EmailVerificationNotification,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && !slices.Contains(enableConsumerNames, consumer.name) {
			continue
		}

		if err := routine.Go(ctx, consumer.name, func(pCtx context.Context) error {
			slog.InfoContext(pCtx, "Running job for handling consumer", "consumer", consumer.name)
			return messenger.Consume(pCtx,
				consumer.topic,
				consumer.handler,
				messaging.WithQueueGroup(consumer.queueGroup),
				messaging.WithAutoAck(true),
				messaging.WithConcurrency(cfg.GetInt("modules.notification.consumer_concurrency")),
			)
		}); err != nil {
			return err
		}
	}

	return nil
}
