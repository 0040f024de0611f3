// Command seed fetches index constituents, values them and writes one CSV
// per market for offline use.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"valuemap/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}
