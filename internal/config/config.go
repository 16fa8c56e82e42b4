package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	ClusterARN  string // AURORA_LISTENER_CLUSTER_ARN (required unless DatabaseURL)
	SecretARN   string // AURORA_LISTENER_SECRET_ARN (required unless DatabaseURL)
	Database    string // LISTENER_DATABASE (default "ListenerDB")
	DatabaseURL string // LISTENER_DATABASE_URL (optional, selects the PostgreSQL store)

	DeadLetterQueue string        // LISTENER_DLQ_NAME (default "ListenerDeadLetterQueue")
	QueueURL        string        // LISTENER_QUEUE_URL (optional, enables the source-queue consumer)
	PollWait        time.Duration // LISTENER_POLL_WAIT (default 20s, max 20s)

	AWSRegion   string // LISTENER_AWS_REGION (optional, SDK default chain when empty)
	AWSEndpoint string // LISTENER_AWS_ENDPOINT (optional, e.g. LocalStack)

	HTTPAddr  string // LISTENER_HTTP_ADDR (default ":8080")
	GRPCAddr  string // LISTENER_GRPC_ADDR (default ":9090")
	NATSURL   string // LISTENER_NATS_URL (optional, empty = no events)
	AuthToken string // LISTENER_AUTH_TOKEN (optional, empty = auth disabled)
	LogLevel  string // LISTENER_LOG_LEVEL (default "info")
}

// UsePostgres reports whether the PostgreSQL store is selected over the Data API.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Load reads the process configuration from the environment.
func Load() (*Config, error) {
	c := &Config{
		ClusterARN:      os.Getenv("AURORA_LISTENER_CLUSTER_ARN"),
		SecretARN:       os.Getenv("AURORA_LISTENER_SECRET_ARN"),
		Database:        envOrDefault("LISTENER_DATABASE", "ListenerDB"),
		DatabaseURL:     os.Getenv("LISTENER_DATABASE_URL"),
		DeadLetterQueue: envOrDefault("LISTENER_DLQ_NAME", "ListenerDeadLetterQueue"),
		QueueURL:        os.Getenv("LISTENER_QUEUE_URL"),
		AWSRegion:       os.Getenv("LISTENER_AWS_REGION"),
		AWSEndpoint:     os.Getenv("LISTENER_AWS_ENDPOINT"),
		HTTPAddr:        envOrDefault("LISTENER_HTTP_ADDR", ":8080"),
		GRPCAddr:        envOrDefault("LISTENER_GRPC_ADDR", ":9090"),
		NATSURL:         os.Getenv("LISTENER_NATS_URL"),
		AuthToken:       os.Getenv("LISTENER_AUTH_TOKEN"),
		LogLevel:        envOrDefault("LISTENER_LOG_LEVEL", "info"),
	}

	waitStr := envOrDefault("LISTENER_POLL_WAIT", "20s")
	d, err := time.ParseDuration(waitStr)
	if err != nil {
		return nil, fmt.Errorf("LISTENER_POLL_WAIT: %w", err)
	}
	// SQS caps long polling at 20 seconds.
	if d < 0 || d > 20*time.Second {
		return nil, fmt.Errorf("LISTENER_POLL_WAIT: %s is outside 0s..20s", d)
	}
	c.PollWait = d

	return c, nil
}

// RequireStore checks that a store backend is configured: either
// LISTENER_DATABASE_URL or both Aurora ARNs. Commands that never touch the
// store skip it.
func (c *Config) RequireStore() error {
	if c.UsePostgres() {
		return nil
	}
	if c.ClusterARN == "" {
		return fmt.Errorf("AURORA_LISTENER_CLUSTER_ARN is required")
	}
	if c.SecretARN == "" {
		return fmt.Errorf("AURORA_LISTENER_SECRET_ARN is required")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
