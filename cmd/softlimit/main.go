// Command softlimit validates, strips and renders soft-limit markers, lints
// OpenAPI descriptions for them, replays counter scripts and serves the HTTP
// component with its browser runtime.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
