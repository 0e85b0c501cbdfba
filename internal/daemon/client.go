package daemon

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Client wraps a gRPC connection to a running giftd.
type Client struct {
	conn   *grpc.ClientConn
	Health healthpb.HealthClient
}

// Dial connects to the daemon's Unix domain socket.
func Dial(socketPath string) (*Client, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}
	return &Client{conn: conn, Health: healthpb.NewHealthClient(conn)}, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// DaemonHealth is the daemon's view of the offline core.
type DaemonHealth struct {
	Serving bool `json:"serving"`
	Online  bool `json:"online"`
	Drained bool `json:"drained"`
}

// Check queries every health service the daemon reports.
func (c *Client) Check(ctx context.Context) (DaemonHealth, error) {
	var h DaemonHealth
	for _, svc := range []struct {
		name string
		dst  *bool
	}{
		{"", &h.Serving},
		{HealthConnectivity, &h.Online},
		{HealthOutbox, &h.Drained},
	} {
		resp, err := c.Health.Check(ctx, &healthpb.HealthCheckRequest{Service: svc.name})
		if err != nil {
			return DaemonHealth{}, fmt.Errorf("health check %q: %w", svc.name, err)
		}
		*svc.dst = resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}
	return h, nil
}
