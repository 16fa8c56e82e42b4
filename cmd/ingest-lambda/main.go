// Command ingest-lambda stores SQS-triggered messages in their
// organization's event table.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/alfredjeanlab/listener/internal/app"
	"github.com/alfredjeanlab/listener/internal/config"
	"github.com/alfredjeanlab/listener/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := app.NewLambdaLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	metrics.Init()

	a, err := app.Open(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	lambda.Start(a.IngestHandler().Handle)
}
