// Command pim-etl runs the product catalogue ETL pipeline.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nandeep-biztech/pim-etl/internal/adapters/driving/cli"
	"github.com/nandeep-biztech/pim-etl/internal/logger"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetApp(cli.App{
		Bootstrap:   bootstrap,
		WriteSample: writeSample,
	})

	err := cli.Execute(ctx)
	_ = logger.Sync()
	if err != nil {
		stop()
		os.Exit(1)
	}
}
