package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestFake_Advance verifies manual advancing and the time-set flag.
func TestFake_Advance(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 1, 6, 59, 0, 0, time.UTC)
	c := NewFake(start)
	require.True(t, c.IsTimeSet())
	require.Equal(t, start, c.Now())

	got := c.Advance(2 * time.Minute)
	require.Equal(t, 7, got.Hour())
	require.Equal(t, got, c.Now())

	c.SetTimeKnown(false)
	require.False(t, c.IsTimeSet())
}

// TestSystem_UsesLocation checks that the configured location is applied.
func TestSystem_UsesLocation(t *testing.T) {
	t.Parallel()

	s := System{Location: time.UTC}
	require.Equal(t, time.UTC, s.Now().Location())
	require.True(t, s.IsTimeSet())
}
