// Package guard escalates presence detected while the station is armed.
//
// An armed guard waits for presence. The first detection starts a warning
// and a confirmation window; if nobody disarms the guard before the window
// elapses, it raises the alarm and keeps re-arming the alert window until
// disarmed.
package guard

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/oshokin/cstation/internal/hardware/timer"
)

// Escalation timing and signals.
const (
	ConfirmWindow = 30 * time.Second
	AlertWindow   = 90 * time.Second

	ArmedBlink    = time.Second
	PreAlertBlink = 500 * time.Millisecond
	AlertBlink    = 250 * time.Millisecond

	ArmFrequency     = 1000
	ArmDuration      = 200 * time.Millisecond
	WarningFrequency = 800
	WarningPeriod    = 500 * time.Millisecond
	AlarmFrequency   = 1200
)

// State is the escalation stage.
type State int

// Escalation stages.
const (
	Disarmed State = iota
	ArmedWaiting
	ArmedPreAlert
	ArmedAlert
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Disarmed:
		return "disarmed"
	case ArmedWaiting:
		return "armed"
	case ArmedPreAlert:
		return "pre-alert"
	case ArmedAlert:
		return "alert"
	default:
		return "unknown"
	}
}

// Indicator shows the guard state.
type Indicator interface {
	SetBlue(on bool)
	ToggleBlue()
	SetLight(on bool)
	ToggleLight()
}

// Sounder plays the acknowledgment, warning and alarm tones.
type Sounder interface {
	FastSignal(frequency uint, duration time.Duration)
	StartTone(frequency uint, period time.Duration)
	Stop()
}

// Status is a snapshot of the guard.
type Status struct {
	State         State
	PresenceDelay bool
	AlertDelay    bool
	Since         time.Time
}

// Guard is the escalation state machine. Toggle and Tick belong to the
// station main loop; FixPresence and Blink may run on any goroutine.
type Guard struct {
	ind   Indicator
	sound Sounder
	blink timer.Timer
	log   *zap.SugaredLogger

	presence    atomic.Bool
	alertActive atomic.Bool

	state         State
	presenceDelay bool
	delayStart    time.Time
}

// New creates a disarmed guard.
func New(ind Indicator, sound Sounder, blink timer.Timer, log *zap.SugaredLogger) *Guard {
	return &Guard{
		ind:   ind,
		sound: sound,
		blink: blink,
		log:   log,
	}
}

// Toggle arms a disarmed guard and disarms an armed one from any stage.
func (g *Guard) Toggle(now time.Time) {
	if g.state == Disarmed {
		g.arm(now)

		return
	}

	g.disarm()
}

// FixPresence records a presence detection for the next Tick.
func (g *Guard) FixPresence() {
	g.presence.Store(true)
}

// Tick advances the state machine; resetPressed toggles it afterwards.
func (g *Guard) Tick(now time.Time, resetPressed bool) {
	switch g.state {
	case ArmedWaiting:
		if g.presence.Swap(false) {
			g.enterPreAlert(now)
		}
	case ArmedPreAlert:
		g.presence.Store(false)

		if now.Sub(g.delayStart) >= ConfirmWindow {
			g.enterAlert(now)
		}
	case ArmedAlert:
		if g.presence.Swap(false) || now.Sub(g.delayStart) >= AlertWindow {
			g.rearmAlert(now)
		}
	case Disarmed:
		g.presence.Store(false)
	}

	if resetPressed {
		g.Toggle(now)
	}
}

// Blink is the blink timer callback.
func (g *Guard) Blink() {
	g.ind.ToggleBlue()

	if g.alertActive.Load() {
		g.ind.ToggleLight()
	}
}

// Status returns a snapshot of the guard.
func (g *Guard) Status() Status {
	return Status{
		State:         g.state,
		PresenceDelay: g.presenceDelay,
		AlertDelay:    g.alertActive.Load(),
		Since:         g.delayStart,
	}
}

func (g *Guard) arm(now time.Time) {
	g.state = ArmedWaiting
	g.presenceDelay = false
	g.alertActive.Store(false)
	g.presence.Store(false)
	g.delayStart = now

	g.ind.SetBlue(false)
	g.blink.Arm(ArmedBlink, g.Blink)
	g.sound.FastSignal(ArmFrequency, ArmDuration)

	g.log.Info("guard armed")
}

func (g *Guard) disarm() {
	g.blink.Disarm()

	g.state = Disarmed
	g.presenceDelay = false
	g.alertActive.Store(false)
	g.presence.Store(false)
	g.delayStart = time.Time{}

	g.ind.SetBlue(false)
	g.ind.SetLight(false)
	g.sound.Stop()

	g.log.Info("guard disarmed")
}

func (g *Guard) enterPreAlert(now time.Time) {
	g.state = ArmedPreAlert
	g.presenceDelay = true
	g.delayStart = now

	g.ind.SetLight(true)
	g.blink.Arm(PreAlertBlink, g.Blink)
	g.sound.StartTone(WarningFrequency, WarningPeriod)

	g.log.Warn("guard detected presence")
}

func (g *Guard) enterAlert(now time.Time) {
	g.state = ArmedAlert
	g.alertActive.Store(true)
	g.delayStart = now

	g.blink.Arm(AlertBlink, g.Blink)
	g.sound.StartTone(AlarmFrequency, 0)

	g.log.Error("guard raised the alarm")
}

// rearmAlert restarts the alert window, the blink phase and the alarm tone.
func (g *Guard) rearmAlert(now time.Time) {
	g.delayStart = now
	g.blink.Reset()
	g.sound.StartTone(AlarmFrequency, 0)

	g.log.Warnw("guard alert window re-armed", "since", now)
}
