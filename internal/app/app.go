// Package app builds the process-wide dependencies shared by the Lambda
// binaries and listener serve.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/alfredjeanlab/listener/internal/awsclient"
	"github.com/alfredjeanlab/listener/internal/config"
	"github.com/alfredjeanlab/listener/internal/events"
	"github.com/alfredjeanlab/listener/internal/ingest"
	"github.com/alfredjeanlab/listener/internal/query"
	"github.com/alfredjeanlab/listener/internal/queue"
	"github.com/alfredjeanlab/listener/internal/store"
	"github.com/alfredjeanlab/listener/internal/store/postgres"
	"github.com/alfredjeanlab/listener/internal/store/rdsdata"
)

// App holds clients created once per process and reused by every invocation.
type App struct {
	Config    *config.Config
	AWS       *awsclient.Clients
	Store     store.Store
	SQS       *sqs.Client
	Publisher events.Publisher
	Logger    *slog.Logger
}

// Open validates cfg, loads AWS configuration, and opens the store and the
// event publisher.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.RequireStore(); err != nil {
		return nil, err
	}

	aws, err := awsclient.Load(ctx, awsclient.Options{Region: cfg.AWSRegion, Endpoint: cfg.AWSEndpoint})
	if err != nil {
		return nil, err
	}

	st, err := OpenStore(cfg, aws)
	if err != nil {
		return nil, err
	}

	pub, err := NewPublisher(cfg, logger)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &App{
		Config:    cfg,
		AWS:       aws,
		Store:     st,
		SQS:       aws.SQS(),
		Publisher: pub,
		Logger:    logger,
	}, nil
}

// OpenStore selects PostgreSQL when LISTENER_DATABASE_URL is set and the
// Aurora Data API otherwise.
func OpenStore(cfg *config.Config, aws *awsclient.Clients) (store.Store, error) {
	if cfg.UsePostgres() {
		st, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return st, nil
	}
	return rdsdata.New(aws.RDSData(), rdsdata.Config{
		ClusterARN: cfg.ClusterARN,
		SecretARN:  cfg.SecretARN,
		Database:   cfg.Database,
	}), nil
}

// NewPublisher connects to NATS when LISTENER_NATS_URL is set.
func NewPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, error) {
	if cfg.NATSURL == "" {
		logger.Debug("events disabled (LISTENER_NATS_URL not set)")
		return events.NoopPublisher{}, nil
	}
	pub, err := events.NewNATSPublisher(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	logger.Info("events enabled", "nats_url", cfg.NATSURL)
	return pub, nil
}

// Drainer returns the dead-letter drainer for LISTENER_DLQ_NAME.
func (a *App) Drainer() *queue.Drainer {
	return queue.NewDrainer(a.SQS, a.Config.DeadLetterQueue, a.Publisher, a.Logger)
}

// IngestHandler returns the batch handler wired to the store and drainer.
func (a *App) IngestHandler() *ingest.Handler {
	return ingest.NewHandler(a.Store, a.Drainer(), a.Publisher, a.Logger)
}

// QueryHandler returns the event page handler.
func (a *App) QueryHandler() *query.Handler {
	return query.NewHandler(a.Store, a.Logger)
}

// Close releases the publisher and the store.
func (a *App) Close() error {
	var firstErr error
	for _, c := range []io.Closer{a.Publisher, a.Store} {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewLambdaLogger returns the JSON logger used by the Lambda binaries.
// level is a slog level name ("debug", "info", "warn", "error"); anything
// else means info.
func NewLambdaLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}
