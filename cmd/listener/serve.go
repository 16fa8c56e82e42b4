package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/alfredjeanlab/listener/internal/activity"
	"github.com/alfredjeanlab/listener/internal/app"
	"github.com/alfredjeanlab/listener/internal/config"
	"github.com/alfredjeanlab/listener/internal/metrics"
	"github.com/alfredjeanlab/listener/internal/queue"
	"github.com/alfredjeanlab/listener/internal/server"
)

var serveCmd = &cobra.Command{
	Use:               "serve",
	Short:             "Serve the query API and consume the source queue",
	GroupID:           "system",
	Args:              cobra.NoArgs,
	PersistentPreRunE: noClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		healthInterval, _ := cmd.Flags().GetDuration("health-interval")
		idleAfter, _ := cmd.Flags().GetDuration("idle-after")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			level = slog.LevelInfo
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		metrics.Init()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := app.Open(ctx, cfg, logger)
		if err != nil {
			return err
		}
		if cfg.UsePostgres() {
			logger.Info("store: postgres")
		} else {
			logger.Info("store: aurora data api", "database", cfg.Database)
		}

		srv := server.New(a.Store, logger)
		srv.Activity().StartSweeper(activity.SweepConfig{IdleAfter: idleAfter})
		defer srv.Activity().Stop()
		grpcServer := srv.NewGRPCServer(cfg.AuthToken)

		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			a.Close()
			return err
		}
		failures := &serveFailures{stop: stop, logger: logger}
		go failures.run("gRPC", func() error {
			logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
			return grpcServer.Serve(lis)
		})

		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           srv.NewHTTPHandler(cfg.AuthToken),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go failures.run("HTTP", func() error {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			return httpServer.ListenAndServe()
		})

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			srv.WatchHealth(ctx, healthInterval)
		}()

		if cfg.QueueURL != "" {
			ingester := a.IngestHandler()
			ingester.SetRecorder(srv.Activity())
			consumer := queue.NewConsumer(a.SQS, cfg.QueueURL, cfg.PollWait, ingester.ProcessBatch, logger)
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = consumer.Run(ctx)
			}()
			logger.Info("queue consumer started", "queue_url", cfg.QueueURL, "wait", cfg.PollWait)
		} else {
			logger.Info("queue consumer disabled (LISTENER_QUEUE_URL not set)")
		}

		logger.Info("listener started", "grpc_addr", cfg.GRPCAddr, "http_addr", cfg.HTTPAddr)

		<-ctx.Done()
		logger.Info("shutting down")

		srv.Shutdown()
		wg.Wait()
		logger.Info("background workers stopped")

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := a.Close(); err != nil {
			logger.Error("error closing resources", "err", err)
		}
		logger.Info("shutdown complete")
		return failures.Err()
	},
}

// serveFailures stops the process when a listener exits unexpectedly, so a
// bound port or a crashed server ends serve with an error.
type serveFailures struct {
	stop   context.CancelFunc
	logger *slog.Logger

	mu  sync.Mutex
	err error
}

func (f *serveFailures) run(name string, serve func() error) {
	err := serve()
	if err == nil || errors.Is(err, http.ErrServerClosed) || errors.Is(err, grpc.ErrServerStopped) {
		return
	}
	f.logger.Error(name+" server error", "err", err)
	f.mu.Lock()
	if f.err == nil {
		f.err = fmt.Errorf("%s server: %w", name, err)
	}
	f.mu.Unlock()
	f.stop()
}

// Err returns the first server failure, if any.
func (f *serveFailures) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func init() {
	serveCmd.Flags().Duration("health-interval", 30*time.Second, "store health check interval")
	serveCmd.Flags().Duration("idle-after", 15*time.Minute, "mark an org idle after this long without messages")
}
