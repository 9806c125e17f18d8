package automation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/oshokin/cstation/internal/clock"
	"github.com/oshokin/cstation/internal/repository/eeprom"
)

type fakeRelays struct {
	mu        sync.Mutex
	fan       bool
	light     bool
	fanWrites int
}

func (f *fakeRelays) SetFan(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fan = on
	f.fanWrites++
}

func (f *fakeRelays) SetLight(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.light = on
}

type fakeTone struct{ playing bool }

func (f fakeTone) Playing() bool { return f.playing }

// night is a time inside the automatic light window.
var night = time.Date(2026, time.January, 10, 23, 0, 0, 0, time.UTC) //nolint:gochecknoglobals // Test fixture.

func newAutomation(t *testing.T, store *eeprom.Store, now time.Time) (*Automation, *fakeRelays) {
	t.Helper()

	relays := new(fakeRelays)
	deps := Deps{
		Relays: relays,
		Tone:   fakeTone{},
		Store:  store,
		Clock:  clock.NewFake(now),
		Log:    zaptest.NewLogger(t).Sugar(),
	}

	return New(DefaultParams(), deps, now), relays
}

func newStore(t *testing.T) *eeprom.Store {
	t.Helper()

	store, err := eeprom.Open(context.Background(), nil)
	require.NoError(t, err)

	return store
}

func TestBlankStorageStartsAutomatic(t *testing.T) {
	t.Parallel()

	a, relays := newAutomation(t, newStore(t), night)

	state := a.State()
	require.True(t, state.FanAuto)
	require.True(t, state.LightAuto)
	require.False(t, state.FanOn)
	require.Equal(t, MinOffLength, state.FanTimeout)
	require.False(t, relays.fan)
}

func TestIdleFanIsForcedOff(t *testing.T) {
	t.Parallel()

	a, relays := newAutomation(t, newStore(t), night)

	a.OnTick(night.Add(MinOffLength - time.Second))
	require.Equal(t, MinOffLength, a.State().FanTimeout)

	a.OnTick(night.Add(MinOffLength))
	require.False(t, a.State().FanOn)
	require.Equal(t, MaxOffLength, a.State().FanTimeout)
	require.Equal(t, 1, relays.fanWrites)
}

func TestActivityStartsFan(t *testing.T) {
	t.Parallel()

	a, relays := newAutomation(t, newStore(t), night)

	for range 10 {
		a.OnActivityEvent()
	}

	a.OnTick(night.Add(MinOffLength))

	state := a.State()
	require.True(t, state.FanOn)
	require.True(t, relays.fan)
	require.Equal(t, MaxOnLength, state.FanTimeout)
	require.Equal(t, 7, state.Activity)
}

func TestFanManualAutoRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)
	a, relays := newAutomation(t, store, night)

	a.SetFanManual(ctx, night.Add(time.Minute), true)
	require.True(t, relays.fan)
	require.False(t, a.State().FanAuto)
	require.Equal(t, MinOnLength, a.State().FanTimeout)

	auto, on := store.ReadTriState(eeprom.AddrFanState)
	require.False(t, auto)
	require.True(t, on)

	// Manual mode ignores the timeout.
	a.OnTick(night.Add(time.Hour))
	require.True(t, a.State().FanOn)

	// A restart keeps the manual choice.
	restored, restoredRelays := newAutomation(t, store, night)
	require.True(t, restored.State().FanOn)
	require.False(t, restored.State().FanAuto)
	require.True(t, restoredRelays.fan)

	a.SetFanAuto(ctx)
	auto, _ = store.ReadTriState(eeprom.AddrFanState)
	require.True(t, auto)

	a.OnTick(night.Add(time.Hour))
	require.False(t, a.State().FanOn)
	require.False(t, relays.fan)
	require.Equal(t, MaxOffLength, a.State().FanTimeout)
}

func TestSetFanManualSameStateOnlyPersists(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	a, relays := newAutomation(t, store, night)

	a.SetFanManual(context.Background(), night.Add(time.Minute), false)
	require.Equal(t, MinOffLength, a.State().FanTimeout)
	require.Equal(t, 1, relays.fanWrites)

	auto, on := store.ReadTriState(eeprom.AddrFanState)
	require.False(t, auto)
	require.False(t, on)
}

func TestLightFollowsPresenceAtNight(t *testing.T) {
	t.Parallel()

	a, relays := newAutomation(t, newStore(t), night)

	a.OnLuxUpdate(10)
	a.OnActivityEvent()
	a.OnTick(night)
	require.True(t, relays.light)

	// Presence while on restarts the idle timeout.
	a.OnActivityEvent()
	a.OnTick(night.Add(4 * time.Minute))
	a.OnTick(night.Add(8 * time.Minute))
	require.True(t, relays.light)

	a.OnTick(night.Add(9 * time.Minute))
	require.False(t, relays.light)
	require.False(t, a.State().LightOn)
}

func TestLightStaysOffByDayOrWhenBright(t *testing.T) {
	t.Parallel()

	noon := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)

	a, relays := newAutomation(t, newStore(t), noon)
	a.OnLuxUpdate(0)
	a.OnActivityEvent()
	a.OnTick(noon)
	require.False(t, relays.light)

	b, relays := newAutomation(t, newStore(t), night)
	b.OnLuxUpdate(DarkLux)
	b.OnActivityEvent()
	b.OnTick(night)
	require.False(t, relays.light)

	// The evaluation flag is consumed: darkness alone does not switch.
	b.OnLuxUpdate(0)
	b.OnTick(night.Add(time.Second))
	require.False(t, relays.light)
}

func TestLightThresholdIsHigherWhenOn(t *testing.T) {
	t.Parallel()

	a, relays := newAutomation(t, newStore(t), night)
	a.OnLuxUpdate(0)
	a.OnActivityEvent()
	a.OnTick(night)
	require.True(t, relays.light)

	a.OnLuxUpdate(40)
	a.OnActivityEvent()
	a.OnTick(night.Add(4 * time.Minute))
	a.OnTick(night.Add(8 * time.Minute))
	require.True(t, relays.light, "40 lux with the light on still counts as dark")

	a.OnLuxUpdate(DarkLuxWhenOn)
	a.OnActivityEvent()
	a.OnTick(night.Add(9 * time.Minute))
	a.OnTick(night.Add(13 * time.Minute))
	require.False(t, relays.light)
}

func TestLightNeedsLuxAndClock(t *testing.T) {
	t.Parallel()

	a, relays := newAutomation(t, newStore(t), night)
	a.OnActivityEvent()
	a.OnTick(night)
	require.False(t, relays.light, "no lux reading yet")

	unset := clock.NewFake(night)
	unset.SetTimeKnown(false)

	b := New(DefaultParams(), Deps{
		Relays: relays,
		Tone:   fakeTone{},
		Store:  newStore(t),
		Clock:  unset,
		Log:    zaptest.NewLogger(t).Sugar(),
	}, night)
	b.OnLuxUpdate(0)
	b.OnActivityEvent()
	b.OnTick(night)
	require.False(t, relays.light, "clock not set")
}

func TestManualFanIgnoresActivity(t *testing.T) {
	t.Parallel()

	a, _ := newAutomation(t, newStore(t), night)
	a.SetFanManual(context.Background(), night, false)
	a.OnActivityEvent()

	require.Zero(t, a.State().Activity)
}

func TestLightManualOverridesAutomation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)
	a, relays := newAutomation(t, store, night)

	a.SetLightManual(ctx, night, true)
	require.True(t, relays.light)

	a.OnTick(night.Add(time.Hour))
	require.True(t, relays.light)

	auto, on := store.ReadTriState(eeprom.AddrLightState)
	require.False(t, auto)
	require.True(t, on)

	a.SetLightAuto(ctx)
	a.OnTick(night.Add(time.Hour))
	require.False(t, relays.light)
	require.True(t, a.State().LightAuto)
}
