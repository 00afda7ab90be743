// Command meteo looks up current weather from the terminal
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCommand(os.Stdout, os.Stderr, defaultFetcher).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
