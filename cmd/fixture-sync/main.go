package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pfrederiksen/fixture-sync/internal/cli"
	"github.com/pfrederiksen/fixture-sync/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cli.Execute(ctx)

	stop()
	_ = logger.Default().Sync()
	os.Exit(code)
}
