package automation

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/oshokin/cstation/internal/repository/eeprom"
)

// Relays switches the fan and light outputs.
type Relays interface {
	SetFan(on bool)
	SetLight(on bool)
}

// TonePlayer reports whether the sequencer is making sound.
type TonePlayer interface {
	Playing() bool
}

// TimeSource reports whether the time of day can be trusted.
type TimeSource interface {
	IsTimeSet() bool
}

// Storage persists the manual/auto tri-states.
type Storage interface {
	ReadTriState(addr int) (auto, on bool)
	WriteTriState(ctx context.Context, addr int, auto, on bool) error
}

// State is a snapshot of both relays.
type State struct {
	FanOn      bool
	FanAuto    bool
	FanTimeout time.Duration
	Activity   int
	LightOn    bool
	LightAuto  bool
	Lux        float64
	LuxKnown   bool
}

// Deps are the collaborators of Automation.
type Deps struct {
	Relays Relays
	Tone   TonePlayer
	Store  Storage
	Clock  TimeSource
	Log    *zap.SugaredLogger
}

// Automation owns the fan and light relays. Its methods belong to the
// station main loop.
type Automation struct {
	params Params
	relays Relays
	tone   TonePlayer
	store  Storage
	clock  TimeSource
	log    *zap.SugaredLogger

	activity atomic.Int64
	// needsLightEval is cleared when consumed.
	needsLightEval atomic.Bool

	fanOn       bool
	fanAuto     bool
	fanTimeout  time.Duration
	fanLastFlip time.Time

	lightOn       bool
	lightAuto     bool
	lightLastFlip time.Time
	lux           float64
	luxKnown      bool
}

// New restores the persisted modes and drives the relays accordingly.
func New(params Params, deps Deps, now time.Time) *Automation {
	a := &Automation{
		params:        params,
		relays:        deps.Relays,
		tone:          deps.Tone,
		store:         deps.Store,
		clock:         deps.Clock,
		log:           deps.Log,
		fanTimeout:    params.MinOff,
		fanLastFlip:   now,
		lightLastFlip: now,
	}

	var fanManualOn, lightManualOn bool

	a.fanAuto, fanManualOn = a.store.ReadTriState(eeprom.AddrFanState)
	if !a.fanAuto {
		a.fanOn = fanManualOn
	}

	a.lightAuto, lightManualOn = a.store.ReadTriState(eeprom.AddrLightState)
	if !a.lightAuto {
		a.lightOn = lightManualOn
	}

	a.relays.SetFan(a.fanOn)
	a.relays.SetLight(a.lightOn)

	a.log.Infow("automation restored",
		"fan_auto", a.fanAuto, "fan_on", a.fanOn,
		"light_auto", a.lightAuto, "light_on", a.lightOn)

	return a
}

// OnActivityEvent counts a presence event for the fan law and asks for a
// light decision once the clock and the ambient light are known.
func (a *Automation) OnActivityEvent() {
	if a.fanAuto {
		a.activity.Add(1)
	}

	if a.lightAuto && a.luxKnown && a.clock.IsTimeSet() {
		a.needsLightEval.Store(true)
	}
}

// OnLuxUpdate records an ambient light reading.
func (a *Automation) OnLuxUpdate(lux float64) {
	a.lux = lux
	a.luxKnown = true
}

// OnTick runs the automatic fan and light decisions.
func (a *Automation) OnTick(now time.Time) {
	if a.fanAuto && now.Sub(a.fanLastFlip) >= a.fanTimeout {
		a.transitionFan(now, !a.fanOn, 0, true)
	}

	a.evaluateLight(now)
}

// SetFanManual forces the fan on or off until SetFanAuto. Switching an
// active period off by hand shortens the next one proportionally.
func (a *Automation) SetFanManual(ctx context.Context, now time.Time, on bool) {
	a.fanAuto = false
	a.persist(ctx, eeprom.AddrFanState, false, on)

	if on == a.fanOn {
		return
	}

	a.transitionFan(now, on, max(now.Sub(a.fanLastFlip), time.Nanosecond), false)
}

// SetFanAuto hands the fan back to the law; the current period keeps running.
func (a *Automation) SetFanAuto(ctx context.Context) {
	a.fanAuto = true
	a.persist(ctx, eeprom.AddrFanState, true, a.fanOn)
}

// SetLightManual forces the light on or off until SetLightAuto.
func (a *Automation) SetLightManual(ctx context.Context, now time.Time, on bool) {
	a.lightAuto = false
	a.persist(ctx, eeprom.AddrLightState, false, on)
	a.switchLight(now, on)
}

// SetLightAuto hands the light back to presence control.
func (a *Automation) SetLightAuto(ctx context.Context) {
	a.lightAuto = true
	a.persist(ctx, eeprom.AddrLightState, true, a.lightOn)
}

// State returns a snapshot for status reporting.
func (a *Automation) State() State {
	return State{
		FanOn:      a.fanOn,
		FanAuto:    a.fanAuto,
		FanTimeout: a.fanTimeout,
		Activity:   int(a.activity.Load()),
		LightOn:    a.lightOn,
		LightAuto:  a.lightAuto,
		Lux:        a.lux,
		LuxKnown:   a.luxKnown,
	}
}

func (a *Automation) transitionFan(now time.Time, turnOn bool, elapsed time.Duration, force bool) {
	activity := int(a.activity.Load())

	on, timeout := a.params.Decide(Transition{
		TurnOn:      turnOn,
		Activity:    activity,
		LightOn:     a.lightOn,
		TonePlaying: a.tone.Playing(),
		Previous:    a.fanTimeout,
		Elapsed:     elapsed,
		Force:       force,
	})

	a.activity.Store(int64(Decay(activity)))
	a.fanLastFlip = now
	a.fanTimeout = timeout

	if on != a.fanOn {
		a.fanOn = on
		a.relays.SetFan(on)
	}

	a.log.Debugw("fan transition",
		"requested", turnOn, "on", on, "timeout", timeout, "activity", activity)
}

func (a *Automation) evaluateLight(now time.Time) {
	if !a.lightAuto {
		return
	}

	if a.needsLightEval.Swap(false) {
		switch {
		case a.lightOn && a.dark(a.params.DarkLuxWhenOn):
			a.lightLastFlip = now
		case !a.lightOn && !a.params.inSkipWindow(now.Hour()) && a.dark(a.params.DarkLux):
			a.switchLight(now, true)
		}
	}

	if a.lightOn && now.Sub(a.lightLastFlip) >= a.params.LightIdle {
		a.switchLight(now, false)
	}
}

func (a *Automation) dark(threshold float64) bool {
	return a.luxKnown && a.lux < threshold
}

func (a *Automation) switchLight(now time.Time, on bool) {
	a.lightLastFlip = now

	if on == a.lightOn {
		return
	}

	a.lightOn = on
	a.relays.SetLight(on)

	a.log.Debugw("light switched", "on", on, "lux", a.lux)
}

func (a *Automation) persist(ctx context.Context, addr int, auto, on bool) {
	if err := a.store.WriteTriState(ctx, addr, auto, on); err != nil {
		a.log.Warnw("can't persist relay mode", "addr", addr, "error", err)
	}
}
