// Package graceful ties a context's lifetime to the process's
// termination signals so servers and workers can drain cleanly.
package graceful

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// Context returns a child context that is canceled when the process
// receives SIGINT or SIGTERM.
func Context(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received termination signal, starting graceful shutdown...")
		cancel()
	}()

	return ctx, cancel
}
