package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shandysiswandi/pawhaven/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		slog.Error("failed to start pawhaven", "error", err)
		os.Exit(1)
	}

	runErr := application.Run(ctx)
	if runErr != nil {
		slog.Error("http server stopped unexpectedly", "error", runErr)
	}

	application.Shutdown()

	if runErr != nil {
		os.Exit(1)
	}
}
