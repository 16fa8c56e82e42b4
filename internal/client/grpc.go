package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthClient checks a listener's gRPC health service.
type HealthClient struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
}

// tokenAuth attaches a bearer token to every RPC.
type tokenAuth string

func (t tokenAuth) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + string(t)}, nil
}

func (tokenAuth) RequireTransportSecurity() bool { return false }

// NewHealthClient connects to addr. Extra dial options are appended after
// the defaults.
func NewHealthClient(addr, token string, opts ...grpc.DialOption) (*HealthClient, error) {
	dialOpts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if token != "" {
		dialOpts = append(dialOpts, grpc.WithPerRPCCredentials(tokenAuth(token)))
	}
	conn, err := grpc.NewClient(addr, append(dialOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	return &HealthClient{conn: conn, health: healthpb.NewHealthClient(conn)}, nil
}

// Check returns the serving status of service ("" for the whole server).
func (c *HealthClient) Check(ctx context.Context, service string) (string, error) {
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return "", err
	}
	return resp.GetStatus().String(), nil
}

// Close releases the connection.
func (c *HealthClient) Close() error {
	return c.conn.Close()
}
