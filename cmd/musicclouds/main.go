package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/musicclouds/web/cmd/musicclouds/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		cmd.Fail(os.Stderr, err)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command failure to the shell.
	}
}
