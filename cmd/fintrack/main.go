package main

import (
	"context"
	"os"
	"os/signal"

	"fintrack/internal/cli"
)

func main() {
	cli.Completion().Complete(cli.Name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
