// Package camunda starts follow-up process instances on a Zeebe broker.
package camunda

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"lead-intake/internal/common/errors"
)

// Client starts process instances. Each call is a single attempt.
type Client struct {
	zb  zbc.Client
	cfg ClientConfig
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	// DialTimeout bounds the topology probe made by NewClient and HealthCheck.
	DialTimeout time.Duration
	// RequestTimeout caps StartProcess on top of the caller's deadline.
	RequestTimeout time.Duration
}

// NewClient dials the gateway and verifies it with a topology request.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}

	zb, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.GatewayAddress,
		UsePlaintextConnection: cfg.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{zb: zb, cfg: cfg}
	if err := c.HealthCheck(context.Background()); err != nil {
		zb.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.GatewayAddress, err)
	}
	return c, nil
}

// StartProcess creates an instance of the latest deployed version of
// processID with vars as its variables and returns the instance key.
func (c *Client) StartProcess(ctx context.Context, processID string, vars interface{}) (int64, error) {
	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	cmd, err := c.zb.NewCreateInstanceCommand().
		BPMNProcessId(processID).
		LatestVersion().
		VariablesFromObject(vars)
	if err != nil {
		return 0, fmt.Errorf("encode variables: %w", err)
	}

	resp, err := cmd.Send(ctx)
	if err != nil {
		return 0, classify(err, "create-instance "+processID)
	}
	return resp.GetProcessInstanceKey(), nil
}

// HealthCheck sends a topology request bounded by the dial timeout.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	defer cancel()

	if _, err := c.zb.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.zb.Close()
}

// classify maps a gateway error onto the application error codes so sink
// results carry a short, stable reason.
func classify(err error, op string) error {
	wrapped := fmt.Errorf("zeebe %s: %w", op, err)

	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTimeoutError("zeebe", wrapped)
	}

	st, ok := status.FromError(err)
	if !ok {
		// gRPC errors can arrive wrapped in plain text by the zbc layer
		if strings.Contains(strings.ToLower(err.Error()), "deadline exceeded") {
			return errors.NewTimeoutError("zeebe", wrapped)
		}
		return errors.NewExternalServiceError("zeebe", wrapped)
	}

	switch st.Code() {
	case codes.DeadlineExceeded:
		return errors.NewTimeoutError("zeebe", wrapped)
	case codes.NotFound:
		return errors.NewResourceNotFoundError("zeebe", st.Message())
	case codes.Unauthenticated, codes.PermissionDenied:
		return errors.NewAuthenticationError("zeebe", wrapped)
	default:
		return errors.NewExternalServiceError("zeebe", wrapped)
	}
}
