package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/shandysiswandi/pawhaven/internal/pkg/stacktrace"
)

type responder interface {
	Message
	Nackable
	hasResponded() bool
}

// dispatch runs handler with panic recovery and applies auto-ack.
func dispatch(ctx context.Context, kind string, msg responder, handler Handler, autoAck bool) {
	err := callHandlerWithRecover(ctx, kind, func() error {
		return handler(ctx, msg)
	})
	if !autoAck || msg.hasResponded() {
		return
	}

	if err == nil {
		err = msg.Ack(ctx)
	} else {
		err = msg.Nack(ctx)
	}
	if err != nil {
		slog.WarnContext(ctx, "messaging: failed to respond to message", "kind", kind, "subject", msg.Subject(), "error", err)
	}
}

func callHandlerWithRecover(ctx context.Context, kind string, fn func() error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				slog.ErrorContext(ctx, "panic in messaging handler", "kind", kind, "panic", rvr, "stack", paths)
			} else {
				slog.ErrorContext(ctx, "panic in messaging handler", "kind", kind, "panic", rvr, "stack", string(stack))
			}
			err = fmt.Errorf("messaging: panic in %s handler: %v", kind, rvr)
		}
	}()

	return fn()
}
