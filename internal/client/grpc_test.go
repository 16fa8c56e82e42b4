package client

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func TestHealthClient_Check(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	var gotAuth []string
	srv := grpc.NewServer(grpc.UnaryInterceptor(func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		gotAuth = md.Get("authorization")
		return handler(ctx, req)
	}))
	hs := health.NewServer()
	hs.SetServingStatus("listener.v1.Listener", healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := NewHealthClient("passthrough:///bufnet", "tok", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	if err != nil {
		t.Fatalf("NewHealthClient: %v", err)
	}
	defer c.Close()

	got, err := c.Check(context.Background(), "")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got != "SERVING" {
		t.Errorf("overall = %q, want SERVING", got)
	}
	if len(gotAuth) != 1 || gotAuth[0] != "Bearer tok" {
		t.Errorf("authorization = %v", gotAuth)
	}

	got, err = c.Check(context.Background(), "listener.v1.Listener")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got != "NOT_SERVING" {
		t.Errorf("service = %q, want NOT_SERVING", got)
	}

	_, err = c.Check(context.Background(), "unknown")
	if status.Code(err) != codes.NotFound {
		t.Errorf("unknown service: %v", err)
	}
}
