package chime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/oshokin/cstation/internal/domain/tone"
	"github.com/oshokin/cstation/internal/repository/eeprom"
)

type recorder struct {
	scripts []string
}

func (r *recorder) StartMelody(script string) {
	r.scripts = append(r.scripts, script)
}

func newChime(t *testing.T) (*Chime, *recorder) {
	t.Helper()

	store, err := eeprom.Open(context.Background(), nil)
	require.NoError(t, err)

	player := new(recorder)

	return New(store, player, zaptest.NewLogger(t).Sugar()), player
}

func at(hour, minute int) time.Time {
	return time.Date(2026, time.May, 4, hour, minute, 0, 0, time.UTC)
}

func melody(t *testing.T, index int) string {
	t.Helper()

	script, ok := tone.Melody(index)
	require.True(t, ok)

	return script
}

func TestBlankStorageIsQuiet(t *testing.T) {
	t.Parallel()

	c, player := newChime(t)

	_, ok := c.AlarmHour()
	require.False(t, ok)
	require.False(t, c.HourlyBeep())

	require.False(t, c.OnTick(at(9, 59), true, false))
	require.False(t, c.OnTick(at(10, 0), true, false))
	require.Empty(t, player.scripts)
}

func TestAlarmHour(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, player := newChime(t)

	require.NoError(t, c.SetAlarmHour(ctx, 7))

	hour, ok := c.AlarmHour()
	require.True(t, ok)
	require.Equal(t, 7, hour)

	require.False(t, c.OnTick(at(6, 59), true, false), "first hour only primes the chime")
	require.True(t, c.OnTick(at(7, 0), true, false))
	require.False(t, c.OnTick(at(7, 30), true, false))
	require.Equal(t, []string{melody(t, 0)}, player.scripts)

	require.NoError(t, c.SetAlarmHour(ctx, -1))
	_, ok = c.AlarmHour()
	require.False(t, ok)

	require.ErrorIs(t, c.SetAlarmHour(ctx, 24), ErrInvalidHour)
}

func TestHourlyRotation(t *testing.T) {
	t.Parallel()

	c, player := newChime(t)
	require.NoError(t, c.SetHourlyBeep(context.Background(), true))
	require.True(t, c.HourlyBeep())

	c.OnTick(at(5, 0), true, false)

	for hour := 6; hour <= 23; hour++ {
		played := c.OnTick(at(hour, 0), true, false)
		require.Equal(t, hour <= LastHour, played, "hour %d", hour)
	}

	count := tone.MelodyCount()
	require.Len(t, player.scripts, LastHour-FirstHour+1)
	require.Equal(t, melody(t, 1), player.scripts[0])
	require.Equal(t, melody(t, (LastHour-FirstHour)%(count-1)+1), player.scripts[len(player.scripts)-1])
}

func TestAlarmWinsOverHourly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, player := newChime(t)
	require.NoError(t, c.SetHourlyBeep(ctx, true))
	require.NoError(t, c.SetAlarmHour(ctx, 8))

	c.OnTick(at(7, 0), true, false)
	c.OnTick(at(8, 0), true, false)

	require.Equal(t, []string{melody(t, 0)}, player.scripts)
}

func TestUnsetClockIsQuiet(t *testing.T) {
	t.Parallel()

	c, player := newChime(t)
	require.NoError(t, c.SetHourlyBeep(context.Background(), true))

	c.OnTick(at(9, 0), false, false)
	c.OnTick(at(10, 0), false, false)
	c.OnTick(at(11, 0), true, false)

	require.Empty(t, player.scripts)
}

func TestQuietSkipsWithoutPlayingLate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, player := newChime(t)

	require.NoError(t, c.SetAlarmHour(ctx, 7))

	c.OnTick(at(6, 59), true, false)
	require.False(t, c.OnTick(at(7, 0), true, true))
	require.False(t, c.OnTick(at(7, 1), true, false), "a skipped hour is not replayed")
	require.Empty(t, player.scripts)

	require.NoError(t, c.SetHourlyBeep(ctx, true))
	require.True(t, c.OnTick(at(8, 0), true, false))
	require.Len(t, player.scripts, 1)
}
