package gpio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSimulated_OutputsAndTone checks recorded output and tone state.
func TestSimulated_OutputsAndTone(t *testing.T) {
	t.Parallel()

	var b Board = NewSimulated()
	sim := b.(*Simulated)

	require.NoError(t, b.Set(Fan, true))
	require.True(t, sim.Output(Fan))
	require.False(t, sim.Output(Light))

	b.Emit(440)
	require.Equal(t, uint(440), sim.Frequency())
	require.Equal(t, 1, sim.Emits())

	b.Silence()
	require.Zero(t, sim.Frequency())

	require.NoError(t, b.Close())
	require.True(t, sim.Closed())
}

// TestSimulated_Handlers verifies injected edges reach the registered handlers.
func TestSimulated_Handlers(t *testing.T) {
	t.Parallel()

	sim := NewSimulated()

	// No handlers yet: edges are dropped.
	sim.TriggerPresence()
	sim.PressReset()

	presence, reset := 0, 0
	require.NoError(t, sim.Watch(Handlers{
		Presence: func() { presence++ },
		Reset:    func() { reset++ },
	}))

	sim.TriggerPresence()
	sim.TriggerPresence()
	sim.PressReset()

	require.Equal(t, 2, presence)
	require.Equal(t, 1, reset)
}

// TestOutputString covers the log names.
func TestOutputString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "blue", Blue.String())
	require.Equal(t, "light", Light.String())
	require.Equal(t, "output(42)", Output(42).String())
}
