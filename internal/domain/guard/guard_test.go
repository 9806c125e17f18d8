package guard

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/oshokin/cstation/internal/hardware/timer"
)

type fakeIndicator struct {
	mu    sync.Mutex
	blue  bool
	light bool
}

func (f *fakeIndicator) SetBlue(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.blue = on
}

func (f *fakeIndicator) ToggleBlue() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.blue = !f.blue
}

func (f *fakeIndicator) SetLight(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.light = on
}

func (f *fakeIndicator) ToggleLight() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.light = !f.light
}

type call struct {
	kind      string
	frequency uint
	duration  time.Duration
}

type fakeSounder struct {
	calls []call
}

func (f *fakeSounder) FastSignal(frequency uint, duration time.Duration) {
	f.calls = append(f.calls, call{kind: "fast", frequency: frequency, duration: duration})
}

func (f *fakeSounder) StartTone(frequency uint, period time.Duration) {
	f.calls = append(f.calls, call{kind: "tone", frequency: frequency, duration: period})
}

func (f *fakeSounder) Stop() {
	f.calls = append(f.calls, call{kind: "stop"})
}

func (f *fakeSounder) last() call {
	return f.calls[len(f.calls)-1]
}

type fixture struct {
	guard *Guard
	ind   *fakeIndicator
	sound *fakeSounder
	blink *timer.Fake
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		ind:   new(fakeIndicator),
		sound: new(fakeSounder),
		blink: timer.NewFake(8 * time.Second),
	}
	f.guard = New(f.ind, f.sound, f.blink, zaptest.NewLogger(t).Sugar())

	return f
}

var start = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC) //nolint:gochecknoglobals // Test fixture.

func TestArmAcknowledges(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.guard.Toggle(start)
	require.Equal(t, ArmedWaiting, f.guard.Status().State)
	require.Equal(t, call{kind: "fast", frequency: ArmFrequency, duration: ArmDuration}, f.sound.last())
	require.Equal(t, ArmedBlink, f.blink.Interval())

	f.blink.Fire(1)
	require.True(t, f.ind.blue)
	require.False(t, f.ind.light)
}

func TestDoubleToggleDisarms(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.guard.Toggle(start)
	f.guard.FixPresence()
	f.guard.Tick(start.Add(time.Second), false)
	require.True(t, f.ind.light)

	f.guard.Toggle(start.Add(2 * time.Second))

	require.Equal(t, Status{State: Disarmed}, f.guard.Status())
	require.False(t, f.blink.Armed())
	require.False(t, f.ind.blue)
	require.False(t, f.ind.light)
	require.Equal(t, call{kind: "stop"}, f.sound.last())
}

func TestToggleTwiceFromIdle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.guard.Toggle(start)
	f.guard.Toggle(start)

	require.Equal(t, Disarmed, f.guard.Status().State)
	require.False(t, f.blink.Armed())
	require.Equal(t, "stop", f.sound.last().kind)
}

func TestPresenceEscalates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.guard.Toggle(start)
	f.guard.Tick(start.Add(time.Minute), false)
	require.Equal(t, ArmedWaiting, f.guard.Status().State, "no presence, no escalation")

	detected := start.Add(2 * time.Minute)
	f.guard.FixPresence()
	f.guard.Tick(detected, false)

	status := f.guard.Status()
	require.Equal(t, ArmedPreAlert, status.State, "presence never jumps straight to alert")
	require.True(t, status.PresenceDelay)
	require.False(t, status.AlertDelay)
	require.Equal(t, PreAlertBlink, f.blink.Interval())
	require.Equal(t, call{kind: "tone", frequency: WarningFrequency, duration: WarningPeriod}, f.sound.last())
	require.True(t, f.ind.light)

	f.guard.Tick(detected.Add(ConfirmWindow-time.Millisecond), false)
	require.Equal(t, ArmedPreAlert, f.guard.Status().State)

	f.guard.Tick(detected.Add(ConfirmWindow), false)

	status = f.guard.Status()
	require.Equal(t, ArmedAlert, status.State)
	require.True(t, status.PresenceDelay)
	require.True(t, status.AlertDelay)
	require.Equal(t, AlertBlink, f.blink.Interval())
	require.Equal(t, call{kind: "tone", frequency: AlarmFrequency}, f.sound.last())

	// Alert blinking flashes the light along with the blue LED.
	f.blink.Fire(1)
	require.True(t, f.ind.blue)
	require.False(t, f.ind.light)
}

func TestResetDuringPreAlertDisarms(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.guard.Toggle(start)
	f.guard.FixPresence()
	f.guard.Tick(start, false)
	f.guard.Tick(start.Add(10*time.Second), true)

	require.Equal(t, Disarmed, f.guard.Status().State)

	f.guard.Tick(start.Add(time.Hour), false)
	require.Equal(t, Disarmed, f.guard.Status().State)
}

func TestAlertWindowRearms(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.guard.Toggle(start)
	f.guard.FixPresence()
	f.guard.Tick(start, false)

	alert := start.Add(ConfirmWindow)
	f.guard.Tick(alert, false)
	require.Equal(t, ArmedAlert, f.guard.Status().State)

	calls := len(f.sound.calls)

	f.guard.Tick(alert.Add(AlertWindow-time.Second), false)
	require.Len(t, f.sound.calls, calls)
	require.Zero(t, f.blink.Resets())

	f.guard.Tick(alert.Add(AlertWindow), false)
	require.Len(t, f.sound.calls, calls+1)
	require.Equal(t, 1, f.blink.Resets())
	require.Equal(t, AlertBlink, f.blink.Interval())
	require.Equal(t, alert.Add(AlertWindow), f.guard.Status().Since)
	require.Equal(t, ArmedAlert, f.guard.Status().State)

	f.guard.FixPresence()
	f.guard.Tick(alert.Add(AlertWindow+time.Second), false)
	require.Equal(t, alert.Add(AlertWindow+time.Second), f.guard.Status().Since)
}

func TestPresenceWhileDisarmedIsDropped(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.guard.FixPresence()
	f.guard.Tick(start, false)
	f.guard.Toggle(start)
	f.guard.Tick(start.Add(time.Second), false)

	require.Equal(t, ArmedWaiting, f.guard.Status().State)
}
