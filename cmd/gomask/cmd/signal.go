package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dbsmedya/gomask/internal/logger"
)

// signalContext is cancelled on SIGINT or SIGTERM. The running batch
// finishes its current row before the job stops.
func signalContext(parent context.Context, log *logger.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			log.Warn("Received shutdown signal - stopping after current batch...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
