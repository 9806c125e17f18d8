//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	api "github.com/oshokin/cstation/internal/api/grpc/station"
	"github.com/oshokin/cstation/internal/domain/automation"
	"github.com/oshokin/cstation/internal/domain/guard"
	"github.com/oshokin/cstation/internal/domain/station"
)

// recordingService is a minimal station service for client tests.
type recordingService struct {
	mu     sync.Mutex
	actors []string
	fan    automation.Mode
	hour   int
}

func (r *recordingService) seen(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.actors = append(r.actors, api.ActorFromContext(ctx))
}

func (r *recordingService) RunTone(ctx context.Context, _ string) error {
	r.seen(ctx)

	return nil
}

func (r *recordingService) RunMelody(ctx context.Context, _ string) error {
	r.seen(ctx)

	return nil
}

func (r *recordingService) ToggleGuard(ctx context.Context) error {
	r.seen(ctx)

	return nil
}

func (r *recordingService) FixPresence(ctx context.Context) error {
	r.seen(ctx)

	return station.ErrStopped
}

func (r *recordingService) SetFan(ctx context.Context, mode automation.Mode) error {
	r.seen(ctx)

	r.mu.Lock()
	r.fan = mode
	r.mu.Unlock()

	return nil
}

func (r *recordingService) SetLight(ctx context.Context, _ automation.Mode) error {
	r.seen(ctx)

	return nil
}

func (r *recordingService) ReportLux(ctx context.Context, _ float64) error {
	r.seen(ctx)

	return nil
}

func (r *recordingService) SetAlarmHour(ctx context.Context, hour int) error {
	r.seen(ctx)

	r.mu.Lock()
	r.hour = hour
	r.mu.Unlock()

	return nil
}

func (r *recordingService) SetHourlyBeep(ctx context.Context, _ bool) error {
	r.seen(ctx)

	return nil
}

func (r *recordingService) Status(ctx context.Context) (station.Snapshot, error) {
	r.seen(ctx)

	return station.Snapshot{
		Guard:     guard.Status{State: guard.ArmedPreAlert},
		AlarmHour: 7,
	}, nil
}

// newTestClient serves svc over bufconn and returns a client bound to it.
func newTestClient(t *testing.T, svc api.Service, opts ...Option) *Client {
	t.Helper()

	listener := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	api.RegisterStationServer(srv, api.NewServer(svc))

	go func() {
		_ = srv.Serve(listener)
	}()

	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return NewClient(conn, opts...)
}

// TestDial_ValidatesAddress verifies that Dial rejects empty addresses.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	require.NotNil(t, ctx)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}

// TestClient_Close is a no-op for borrowed connections and nil clients.
func TestClient_Close(t *testing.T) {
	t.Parallel()

	var nilClient *Client
	require.NoError(t, nilClient.Close())
	require.NoError(t, NewClient(nil).Close())
}

// TestClient_Calls round-trips every command and checks the actor metadata.
func TestClient_Calls(t *testing.T) {
	t.Parallel()

	svc := new(recordingService)
	c := newTestClient(t, svc, WithActor("oleg@kitchen"), WithCallTimeout(time.Second))
	ctx := context.Background()

	require.NoError(t, c.RunTone(ctx, "440"))
	require.NoError(t, c.RunMelody(ctx, "I1"))
	require.NoError(t, c.ToggleGuard(ctx))
	require.NoError(t, c.SetFan(ctx, "on"))
	require.NoError(t, c.SetLight(ctx, "auto"))
	require.NoError(t, c.ReportLux(ctx, 3.5))
	require.NoError(t, c.SetAlarmHour(ctx, 7))
	require.NoError(t, c.SetHourlyBeep(ctx, true))

	fields, err := c.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, "pre-alert", fields["guard_state"])
	require.InDelta(t, 7, fields["alarm_hour"], 0)

	err = c.FixPresence(ctx)
	require.Equal(t, codes.Unavailable, status.Code(err))

	err = c.SetLight(ctx, "dim")
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	svc.mu.Lock()
	defer svc.mu.Unlock()

	require.Equal(t, automation.ModeOn, svc.fan)
	require.Equal(t, 7, svc.hour)
	require.Len(t, svc.actors, 10)

	for _, actor := range svc.actors {
		require.Equal(t, "oleg@kitchen", actor)
	}
}
