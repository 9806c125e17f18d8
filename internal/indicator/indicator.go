// Package indicator drives the status LEDs and the fan/light relays.
//
// Panel remembers the last state of every output so that toggles and
// semantic states can be composed from timer goroutines and the main loop
// alike. Output errors are logged and otherwise ignored.
package indicator

import (
	"sync"

	"go.uber.org/zap"

	"github.com/oshokin/cstation/internal/hardware/gpio"
)

// Panel is the station indicator.
type Panel struct {
	out gpio.Outputs
	log *zap.SugaredLogger

	mu    sync.Mutex
	state map[gpio.Output]bool
}

// NewPanel creates a panel over out and switches every output off.
func NewPanel(out gpio.Outputs, log *zap.SugaredLogger) *Panel {
	p := &Panel{
		out:   out,
		log:   log,
		state: make(map[gpio.Output]bool),
	}

	for _, o := range []gpio.Output{gpio.Blue, gpio.Yellow, gpio.Red, gpio.Fan, gpio.Light} {
		p.set(o, false)
	}

	return p
}

// SetBlue switches the blue LED.
func (p *Panel) SetBlue(on bool) { p.set(gpio.Blue, on) }

// SetYellow switches the yellow LED.
func (p *Panel) SetYellow(on bool) { p.set(gpio.Yellow, on) }

// SetRed switches the red LED.
func (p *Panel) SetRed(on bool) { p.set(gpio.Red, on) }

// SetFan switches the fan relay.
func (p *Panel) SetFan(on bool) { p.set(gpio.Fan, on) }

// SetLight switches the light relay.
func (p *Panel) SetLight(on bool) { p.set(gpio.Light, on) }

// ToggleBlue inverts the blue LED.
func (p *Panel) ToggleBlue() { p.toggle(gpio.Blue) }

// ToggleLight inverts the light relay.
func (p *Panel) ToggleLight() { p.toggle(gpio.Light) }

// State returns the last state written to o.
func (p *Panel) State(o gpio.Output) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state[o]
}

// ToneState mirrors the tone phase on the blue LED.
func (p *Panel) ToneState(on bool) { p.set(gpio.Blue, on) }

// ConfigState shows configuration progress: red from level 1, yellow and blue from level 2.
func (p *Panel) ConfigState(level int) {
	p.SetRed(level > 0)
	p.SetYellow(level > 1)
	p.SetBlue(level > 1)
}

// ConnectState shows connection progress: red from level 1, yellow from level 2.
func (p *Panel) ConnectState(level int) {
	p.SetRed(level > 0)
	p.SetYellow(level > 1)
	p.SetBlue(false)
}

// SensorsSendingState lights red while a sensor report is in flight.
func (p *Panel) SensorsSendingState(level int) {
	p.mu.Lock()
	yellow := p.state[gpio.Yellow]
	p.mu.Unlock()

	p.SetRed(level > 0)

	if level == 0 && yellow {
		p.SetYellow(false)
	}
}

// PresenceState shows presence on the yellow LED unless red is busy.
func (p *Panel) PresenceState(on bool) { p.yellowUnlessRed(on) }

// OuterState shows outer sensor activity on the yellow LED unless red is busy.
func (p *Panel) OuterState(on bool) { p.yellowUnlessRed(on) }

func (p *Panel) yellowUnlessRed(on bool) {
	p.mu.Lock()
	red := p.state[gpio.Red]
	p.mu.Unlock()

	if !red {
		p.SetYellow(on)
	}
}

func (p *Panel) toggle(o gpio.Output) {
	p.mu.Lock()
	on := !p.state[o]
	p.mu.Unlock()

	p.set(o, on)
}

func (p *Panel) set(o gpio.Output, on bool) {
	p.mu.Lock()
	p.state[o] = on
	p.mu.Unlock()

	if err := p.out.Set(o, on); err != nil && p.log != nil {
		p.log.Warnw("Failed to drive output", "output", o.String(), "on", on, "error", err)
	}
}
