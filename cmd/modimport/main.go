package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/danieljhkim/modimport/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.ExecuteContext(ctx)
	stop()
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}
