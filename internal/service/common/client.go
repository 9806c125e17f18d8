//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	api "github.com/oshokin/cstation/internal/api/grpc/station"
	"github.com/oshokin/cstation/internal/config"
)

// Client wraps a gRPC connection to the station service with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the station.
	conn grpc.ClientConnInterface
	// closer releases conn; nil when the connection is owned elsewhere.
	closer func() error

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// actor is sent with every call so the station can log who asked.
	actor string
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor sets the "user@host" identity attached to every call.
func WithActor(actor string) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial establishes a gRPC connection to the station.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	// Use the non-context NewClient API recommended by grpc-go
	// (DialContext is deprecated as of grpc-go v1.60+).
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial station: %w", err)
	}

	client := NewClient(conn, opts...)
	client.closer = conn.Close

	return client, nil
}

// NewClient wraps an existing connection. Close does not release it.
func NewClient(conn grpc.ClientConnInterface, opts ...Option) *Client {
	client := &Client{
		conn:        conn,
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}

	return c.closer()
}

// RunTone sends a "[L][,]frequency[,period_ms]" command.
func (c *Client) RunTone(ctx context.Context, command string) error {
	return c.call(ctx, api.MethodRunTone, wrapperspb.String(command), new(emptypb.Empty))
}

// RunMelody sends a "[B][I]index_or_script" command.
func (c *Client) RunMelody(ctx context.Context, command string) error {
	return c.call(ctx, api.MethodRunMelody, wrapperspb.String(command), new(emptypb.Empty))
}

// ToggleGuard arms or disarms the guard.
func (c *Client) ToggleGuard(ctx context.Context) error {
	return c.call(ctx, api.MethodToggleGuard, new(emptypb.Empty), new(emptypb.Empty))
}

// FixPresence reports presence as if the sensor fired.
func (c *Client) FixPresence(ctx context.Context) error {
	return c.call(ctx, api.MethodFixPresence, new(emptypb.Empty), new(emptypb.Empty))
}

// SetFan switches the fan to "on", "off" or "auto".
func (c *Client) SetFan(ctx context.Context, mode string) error {
	return c.call(ctx, api.MethodSetFan, wrapperspb.String(mode), new(emptypb.Empty))
}

// SetLight switches the light to "on", "off" or "auto".
func (c *Client) SetLight(ctx context.Context, mode string) error {
	return c.call(ctx, api.MethodSetLight, wrapperspb.String(mode), new(emptypb.Empty))
}

// ReportLux feeds an ambient light reading.
func (c *Client) ReportLux(ctx context.Context, lux float64) error {
	return c.call(ctx, api.MethodReportLux, wrapperspb.Double(lux), new(emptypb.Empty))
}

// SetAlarmHour stores the wake-up hour; a negative hour clears it.
func (c *Client) SetAlarmHour(ctx context.Context, hour int32) error {
	return c.call(ctx, api.MethodSetAlarmHour, wrapperspb.Int32(hour), new(emptypb.Empty))
}

// SetHourlyBeep enables or disables the hourly chime.
func (c *Client) SetHourlyBeep(ctx context.Context, on bool) error {
	return c.call(ctx, api.MethodSetHourlyBeep, wrapperspb.Bool(on), new(emptypb.Empty))
}

// Status retrieves the current station snapshot as a flat field map.
func (c *Client) Status(ctx context.Context) (map[string]any, error) {
	resp := new(structpb.Struct)
	if err := c.call(ctx, api.MethodGetStatus, new(emptypb.Empty), resp); err != nil {
		return nil, err
	}

	return resp.AsMap(), nil
}

// call invokes method with the client's timeout and actor metadata.
func (c *Client) call(ctx context.Context, method string, req, resp proto.Message) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if c.actor != "" {
		callCtx = metadata.AppendToOutgoingContext(callCtx, api.ActorMetadataKey, c.actor)
	}

	if err := c.conn.Invoke(callCtx, api.FullMethod(method), req, resp); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	return nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
