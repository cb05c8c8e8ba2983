// Package client calls a remote icscheck gRPC server.
package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/ppiankov/icscheck/internal/model"
	"github.com/ppiankov/icscheck/internal/server"
)

// DefaultTimeout bounds a call when the context carries no deadline.
const DefaultTimeout = 5 * time.Second

// Client connects to an icscheck gRPC server.
type Client struct {
	conn *grpc.ClientConn
}

// New creates a gRPC client for addr. Extra dial options are appended
// after the insecure transport credentials.
func New(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to validator server: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Validate sends an instruction to the remote server and returns its report.
// Unlike local validation, transport failures surface as errors.
func (c *Client) Validate(ctx context.Context, text string) (*model.Report, error) {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, server.ValidateMethod, wrapperspb.String(text), out); err != nil {
		return nil, fmt.Errorf("remote validate: %w", err)
	}
	return server.StructToReport(out)
}

// Ping checks that the server reports SERVING for the validator service.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: server.ServiceName})
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("validator not serving: %s", resp.GetStatus())
	}
	return nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, DefaultTimeout)
}
