package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"google.golang.org/grpc"
)

func TestServeFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		stopped bool
	}{
		{name: "clean return", err: nil},
		{name: "http closed", err: http.ErrServerClosed},
		{name: "grpc stopped", err: grpc.ErrServerStopped},
		{name: "address in use", err: errors.New("listen tcp :8080: bind: address already in use"), stopped: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			f := &serveFailures{stop: cancel, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

			f.run("HTTP", func() error { return tt.err })

			if got := ctx.Err() != nil; got != tt.stopped {
				t.Fatalf("stopped = %v, want %v", got, tt.stopped)
			}
			if tt.stopped {
				if !errors.Is(f.Err(), tt.err) {
					t.Fatalf("Err() = %v, want wrapping %v", f.Err(), tt.err)
				}
			} else if f.Err() != nil {
				t.Fatalf("Err() = %v, want nil", f.Err())
			}
		})
	}
}

func TestServeFailures_KeepsFirst(t *testing.T) {
	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := &serveFailures{stop: cancel, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	first := errors.New("first")

	f.run("gRPC", func() error { return first })
	f.run("HTTP", func() error { return errors.New("second") })

	if !errors.Is(f.Err(), first) {
		t.Fatalf("Err() = %v, want first failure", f.Err())
	}
}
