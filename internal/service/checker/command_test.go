package checker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errTestUnavailable = errors.New("station unavailable")

// scriptedSource replays guard states, then repeats the last one.
type scriptedSource struct {
	mu     sync.Mutex
	states []string
	errs   []error
	calls  int
}

func (s *scriptedSource) Status(context.Context) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := min(s.calls, len(s.states)-1)
	s.calls++

	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}

	return map[string]any{"guard_state": s.states[i]}, nil
}

// TestWatch_ExitsOnAlert returns ErrAlert after walking through the escalation.
func TestWatch_ExitsOnAlert(t *testing.T) {
	t.Parallel()

	source := &scriptedSource{
		states: []string{"armed", "", "pre-alert", "alert"},
		errs:   []error{nil, errTestUnavailable},
	}

	err := Watch(context.Background(), source, &Options{
		PollInterval: time.Millisecond,
		ExitOnAlert:  true,
	})

	require.ErrorIs(t, err, ErrAlert)
	require.Equal(t, 4, source.calls)
}

// TestWatch_ReturnsOnCancel exits cleanly when the context ends.
func TestWatch_ReturnsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	source := &scriptedSource{states: []string{"alert"}}

	err := Watch(ctx, source, &Options{PollInterval: time.Millisecond})
	require.NoError(t, err)
}

// TestCheckState keeps the previous state on errors.
func TestCheckState(t *testing.T) {
	t.Parallel()

	source := &scriptedSource{
		states: []string{"armed", "armed"},
		errs:   []error{errTestUnavailable},
	}

	state, err := checkState(context.Background(), source, "disarmed")
	require.ErrorIs(t, err, errTestUnavailable)
	require.Equal(t, "disarmed", state)

	state, err = checkState(context.Background(), source, "disarmed")
	require.NoError(t, err)
	require.Equal(t, "armed", state)
}
