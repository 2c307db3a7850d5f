// Package main is the entry point for protodig.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/binaryforensics/protodig/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
