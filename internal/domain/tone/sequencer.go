package tone

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/oshokin/cstation/internal/hardware/gpio"
	"github.com/oshokin/cstation/internal/hardware/timer"
)

// SettleDelay separates a preempted tone from a fast signal.
const SettleDelay = 20 * time.Millisecond

// Mode is the active sequencer mode.
type Mode int

// Sequencer modes; exactly one is active at a time.
const (
	ModeIdle Mode = iota
	ModeTone
	ModePeriodic
	ModeMelody
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeTone:
		return "tone"
	case ModePeriodic:
		return "periodic"
	case ModeMelody:
		return "melody"
	default:
		return "unknown"
	}
}

// LED mirrors the tone phase when the tone is linked to it.
type LED interface {
	ToneState(on bool)
}

// State is a point-in-time view of the sequencer.
type State struct {
	Mode      Mode
	Frequency uint
	Period    time.Duration
	Muted     bool
	LEDLinked bool
}

// Active reports whether any mode other than idle is running.
func (s State) Active() bool {
	return s.Mode != ModeIdle
}

// Sequencer plays tones, periodic tones and melodies on the tone output.
type Sequencer struct {
	out   gpio.ToneOutput
	led   LED
	timer timer.Timer
	log   *zap.SugaredLogger

	settle time.Duration
	sleep  func(time.Duration)

	// muted is raised from the tick path and consumed by Poll.
	muted atomic.Bool
	// fastSignal is set while a fast signal owns the output.
	fastSignal atomic.Bool

	// mu serializes Tick against main loop calls; it guards the fields below.
	mu         sync.Mutex
	generation uint64
	mode       Mode
	frequency  uint
	period     time.Duration
	phaseOn    bool
	repeats    int

	melody   string
	cursor   int
	shift    int
	tick     time.Duration
	subTicks int

	ledLinked bool
	ledOn     bool

	divCount int
	divMax   int
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithLED links an indicator that can mirror the tone phase.
func WithLED(led LED) Option {
	return func(s *Sequencer) {
		s.led = led
	}
}

// WithLogger sets the logger; the tick path logs at debug level only.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Sequencer) {
		s.log = log
	}
}

// WithSettle overrides the fast signal settle delay and how it is waited.
func WithSettle(delay time.Duration, sleep func(time.Duration)) Option {
	return func(s *Sequencer) {
		s.settle = delay
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// NewSequencer creates an idle sequencer.
func NewSequencer(out gpio.ToneOutput, t timer.Timer, opts ...Option) *Sequencer {
	s := &Sequencer{
		out:    out,
		timer:  t,
		log:    zap.NewNop().Sugar(),
		settle: SettleDelay,
		sleep:  time.Sleep,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// StartTone plays frequency continuously when period is zero, or toggles it
// on and off every period. A zero frequency stops the sequencer.
func (s *Sequencer) StartTone(frequency uint, period time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()
	s.fastSignal.Store(false)
	s.startToneLocked(frequency, period, 0)
}

// StartMelody plays a melody script from its first token.
func (s *Sequencer) StartMelody(script string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()
	s.fastSignal.Store(false)

	h := parseHeader(script)

	s.mode = ModeMelody
	s.melody = h.body
	s.shift = h.shift
	s.tick = h.tick

	s.log.Debugw("melody started", "tick", s.tick, "shift", s.shift, "length", len(s.melody))

	s.advanceLocked()

	if !s.muted.Load() {
		s.armLocked(s.tick)
	}
}

// LinkLED makes the LED mirror the tone phase until the next Stop.
func (s *Sequencer) LinkLED(linked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !linked {
		s.setLEDLocked(false)
	}

	s.ledLinked = linked && s.led != nil
}

// Tick advances the active mode by one timer interrupt.
func (s *Sequencer) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickLocked()
}

// Stop silences the output and returns to idle. It is idempotent.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()
	s.setLEDLocked(false)
	s.ledLinked = false
	s.fastSignal.Store(false)
}

// FastSignal preempts the current tone with a short one-shot tone.
// It does nothing while another fast signal is in flight.
func (s *Sequencer) FastSignal(frequency uint, duration time.Duration) {
	if !s.fastSignal.CompareAndSwap(false, true) {
		s.log.Debugw("fast signal ignored", "frequency", frequency)

		return
	}

	s.mu.Lock()
	s.teardownLocked()
	s.mu.Unlock()

	s.sleep(s.settle)

	s.mu.Lock()
	defer s.mu.Unlock()

	if frequency == 0 || duration <= 0 {
		s.fastSignal.Store(false)

		return
	}

	s.startToneLocked(frequency, duration, 1)
}

// Poll stops a sequencer that muted itself. Call it from the main loop.
func (s *Sequencer) Poll() {
	if s.muted.Load() {
		s.Stop()
	}
}

// Playing reports whether an audible mode is running.
func (s *Sequencer) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mode != ModeIdle && !s.muted.Load()
}

// State returns a snapshot of the sequencer.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Mode:      s.mode,
		Frequency: s.frequency,
		Period:    s.period,
		Muted:     s.muted.Load(),
		LEDLinked: s.ledLinked,
	}
}

// startToneLocked starts a tone on an idle sequencer. repeats counts on
// phases before the tone mutes itself; zero repeats forever.
func (s *Sequencer) startToneLocked(frequency uint, period time.Duration, repeats int) {
	if frequency == 0 {
		return
	}

	s.frequency = frequency
	s.phaseOn = true
	s.out.Emit(frequency)
	s.setLEDLocked(true)

	if period <= 0 {
		s.mode = ModeTone

		return
	}

	s.mode = ModePeriodic
	s.period = period
	s.repeats = repeats
	s.armLocked(period)
}

// armLocked programs the timer for period, subdividing it when the timer
// cannot count that far.
func (s *Sequencer) armLocked(period time.Duration) {
	interval, n := subdivide(period, s.timer.MaxPeriod())

	s.divCount = 0
	s.divMax = n
	s.generation++

	gen := s.generation

	s.timer.Arm(interval, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if gen != s.generation {
			return
		}

		s.tickLocked()
	})
}

func (s *Sequencer) tickLocked() {
	if s.mode == ModeIdle || s.mode == ModeTone || s.muted.Load() {
		return
	}

	s.divCount++
	if s.divCount < s.divMax {
		return
	}

	s.divCount = 0

	switch s.mode {
	case ModePeriodic:
		s.flipLocked()
	case ModeMelody:
		s.subTicks--
		if s.subTicks <= 0 {
			s.advanceLocked()
		}
	case ModeIdle, ModeTone:
	}
}

// flipLocked toggles the periodic tone phase.
func (s *Sequencer) flipLocked() {
	if s.phaseOn {
		s.phaseOn = false
		s.out.Silence()
		s.setLEDLocked(false)

		if s.repeats > 0 {
			s.repeats--
			if s.repeats == 0 {
				s.muted.Store(true)
			}
		}

		return
	}

	s.phaseOn = true
	s.out.Emit(s.frequency)
	s.setLEDLocked(true)
}

// advanceLocked interprets the next melody token.
func (s *Sequencer) advanceLocked() {
	if s.muted.Load() {
		return
	}

	tok, next := nextToken(s.melody, s.cursor, s.shift)
	s.cursor = next

	switch tok.kind {
	case tokenEnd:
		s.out.Silence()
		s.setLEDLocked(false)
		s.frequency = 0
		s.muted.Store(true)
		s.log.Debug("melody finished")
	case tokenRest:
		s.out.Silence()
		s.setLEDLocked(false)
		s.frequency = 0
		s.subTicks = tok.ticks
	case tokenNote:
		s.out.Emit(tok.frequency)
		s.setLEDLocked(true)
		s.frequency = tok.frequency
		s.subTicks = tok.ticks
	}
}

// teardownLocked returns to idle, keeping the LED linkage.
func (s *Sequencer) teardownLocked() {
	s.generation++
	s.timer.Disarm()
	s.out.Silence()
	s.setLEDLocked(false)

	s.mode = ModeIdle
	s.frequency = 0
	s.period = 0
	s.phaseOn = false
	s.repeats = 0
	s.melody = ""
	s.cursor = 0
	s.shift = 0
	s.tick = 0
	s.subTicks = 0
	s.divCount = 0
	s.divMax = 0
	s.muted.Store(false)
}

func (s *Sequencer) setLEDLocked(on bool) {
	if !s.ledLinked || s.ledOn == on {
		return
	}

	s.ledOn = on
	s.led.ToneState(on)
}

// subdivide returns the interval to program and how many interrupts make
// up one requested period. The interval is the largest whole-millisecond
// divisor of period that fits into maxPeriod.
func subdivide(period, maxPeriod time.Duration) (time.Duration, int) {
	if maxPeriod <= 0 || period <= maxPeriod {
		return period, 1
	}

	ms := period.Milliseconds()
	maxMS := max(maxPeriod.Milliseconds(), 1)

	for n := (ms + maxMS - 1) / maxMS; n <= ms; n++ {
		if ms%n == 0 {
			return time.Duration(ms/n) * time.Millisecond, int(n)
		}
	}

	return time.Millisecond, int(ms)
}
