package server

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/oshokin/cstation/internal/clock"
	"github.com/oshokin/cstation/internal/domain/automation"
	"github.com/oshokin/cstation/internal/domain/chime"
	"github.com/oshokin/cstation/internal/domain/guard"
	"github.com/oshokin/cstation/internal/domain/station"
	"github.com/oshokin/cstation/internal/domain/tone"
	"github.com/oshokin/cstation/internal/hardware/gpio"
	"github.com/oshokin/cstation/internal/hardware/timer"
	"github.com/oshokin/cstation/internal/indicator"
	"github.com/oshokin/cstation/internal/repository/eeprom"
)

// Publisher receives a snapshot whenever the station state changes.
type Publisher interface {
	PublishStatus(s station.Snapshot) error
}

// deps are the collaborators of the station service.
type deps struct {
	clock      clock.Clock
	board      gpio.Board
	panel      *indicator.Panel
	store      *eeprom.Store
	toneTimer  timer.Timer
	blinkTimer timer.Timer
	publishers []Publisher
	poll       time.Duration
	log        *zap.SugaredLogger
}

// command is a closure executed on the main loop.
type command struct {
	fn     func(ctx context.Context, now time.Time) error
	result chan error
}

// service owns the controllers. Composite state is only touched by the
// main loop; sensor handlers and RPCs reach it through atomics or commands.
type service struct {
	clock      clock.Clock
	panel      *indicator.Panel
	tone       *tone.Sequencer
	automation *automation.Automation
	guard      *guard.Guard
	chime      *chime.Chime
	blinkTimer timer.Timer
	publishers []Publisher
	poll       time.Duration
	log        *zap.SugaredLogger

	commands chan command
	done     chan struct{}

	// Raised by GPIO handlers, consumed by the main loop.
	resetPressed    atomic.Bool
	pendingActivity atomic.Int64

	// Indicator flashes shown for one poll.
	presenceLit bool
	outerLit    bool

	last      station.Snapshot
	published bool
}

// newService wires the controllers to the board and registers the sensor
// handlers.
func newService(d deps) (*service, error) {
	panel := d.panel
	if panel == nil {
		panel = indicator.NewPanel(d.board, d.log.Named("indicator"))
	}

	seq := tone.NewSequencer(d.board, d.toneTimer,
		tone.WithLED(panel),
		tone.WithLogger(d.log.Named("tone")),
	)

	s := &service{
		clock:      d.clock,
		panel:      panel,
		tone:       seq,
		guard:      guard.New(panel, seq, d.blinkTimer, d.log.Named("guard")),
		chime:      chime.New(d.store, seq, d.log.Named("chime")),
		blinkTimer: d.blinkTimer,
		publishers: d.publishers,
		poll:       d.poll,
		log:        d.log,
		commands:   make(chan command),
		done:       make(chan struct{}),
	}

	s.automation = automation.New(automation.DefaultParams(), automation.Deps{
		Relays: panel,
		Tone:   seq,
		Store:  d.store,
		Clock:  d.clock,
		Log:    d.log.Named("automation"),
	}, d.clock.Now())

	if err := d.board.Watch(gpio.Handlers{
		Presence: s.onPresence,
		Reset:    s.onReset,
	}); err != nil {
		return nil, fmt.Errorf("watch inputs: %w", err)
	}

	return s, nil
}

// run is the main loop. It returns when ctx is canceled.
func (s *service) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	s.step()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()

			return
		case cmd := <-s.commands:
			cmd.result <- cmd.fn(ctx, s.clock.Now())

			s.publish(s.clock.Now())
		case <-ticker.C:
			s.step()
		}
	}
}

// step is one poll of every controller.
func (s *service) step() {
	now := s.clock.Now()

	s.tone.Poll()
	s.clearFlashes()

	n := s.pendingActivity.Swap(0)
	if n > 0 {
		s.presenceLit = true
	}

	for ; n > 0; n-- {
		s.automation.OnActivityEvent()
	}

	s.guard.Tick(now, s.resetPressed.Swap(false))
	s.automation.OnTick(now)
	s.chime.OnTick(now, s.clock.IsTimeSet(), s.sirenActive())

	s.publish(now)
}

// clearFlashes turns off presence and outer sensor flashes lit before the
// previous poll.
func (s *service) clearFlashes() {
	if s.presenceLit {
		s.panel.PresenceState(false)
		s.presenceLit = false
	}

	if s.outerLit {
		s.panel.OuterState(false)
		s.outerLit = false
	}
}

// sirenActive reports whether the guard owns the sounder.
func (s *service) sirenActive() bool {
	state := s.guard.Status().State

	return state == guard.ArmedPreAlert || state == guard.ArmedAlert
}

func (s *service) shutdown() {
	s.blinkTimer.Disarm()
	s.tone.Stop()

	s.log.Info("station main loop stopped")
}

// publish sends the snapshot to every publisher when it changed.
func (s *service) publish(now time.Time) {
	snap := s.snapshot(now)
	if s.published && snap.Equal(s.last) {
		return
	}

	s.last = snap
	s.published = true

	if len(s.publishers) == 0 {
		return
	}

	s.panel.SensorsSendingState(1)

	for _, p := range s.publishers {
		if err := p.PublishStatus(snap); err != nil {
			s.log.Warnw("can't publish status", "error", err)
		}
	}

	// Sending clears yellow; flashes still due are shown again.
	s.panel.SensorsSendingState(0)

	if s.presenceLit {
		s.panel.PresenceState(true)
	}

	if s.outerLit {
		s.panel.OuterState(true)
	}
}

func (s *service) snapshot(now time.Time) station.Snapshot {
	alarmHour, ok := s.chime.AlarmHour()
	if !ok {
		alarmHour = -1
	}

	return station.Snapshot{
		At:         now,
		TimeSet:    s.clock.IsTimeSet(),
		Tone:       s.tone.State(),
		Guard:      s.guard.Status(),
		Automation: s.automation.State(),
		AlarmHour:  alarmHour,
		HourlyBeep: s.chime.HourlyBeep(),
	}
}

// onPresence runs on the GPIO watcher goroutine.
func (s *service) onPresence() {
	s.guard.FixPresence()
	s.panel.PresenceState(true)
	s.pendingActivity.Add(1)
}

// onReset runs on the GPIO watcher goroutine.
func (s *service) onReset() {
	s.resetPressed.Store(true)
}

// exec runs fn on the main loop and waits for its result.
func (s *service) exec(ctx context.Context, fn func(ctx context.Context, now time.Time) error) error {
	cmd := command{fn: fn, result: make(chan error, 1)}

	select {
	case s.commands <- cmd:
	case <-s.done:
		return station.ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.result:
		return err
	case <-s.done:
		return station.ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunTone executes a "[L][,]frequency[,period_ms]" command.
func (s *service) RunTone(ctx context.Context, cmd string) error {
	return s.exec(ctx, func(context.Context, time.Time) error {
		return s.tone.RunTone(cmd)
	})
}

// RunMelody executes a "[B][I]index_or_script" command.
func (s *service) RunMelody(ctx context.Context, cmd string) error {
	return s.exec(ctx, func(context.Context, time.Time) error {
		return s.tone.RunMelody(cmd)
	})
}

// ToggleGuard arms or disarms the guard.
func (s *service) ToggleGuard(ctx context.Context) error {
	return s.exec(ctx, func(_ context.Context, now time.Time) error {
		s.guard.Toggle(now)

		return nil
	})
}

// FixPresence reports presence as if the sensor fired.
func (s *service) FixPresence(context.Context) error {
	select {
	case <-s.done:
		return station.ErrStopped
	default:
	}

	s.onPresence()

	return nil
}

// SetFan switches the fan mode.
func (s *service) SetFan(ctx context.Context, mode automation.Mode) error {
	return s.exec(ctx, func(ctx context.Context, now time.Time) error {
		switch mode {
		case automation.ModeAuto:
			s.automation.SetFanAuto(ctx)
		case automation.ModeOn, automation.ModeOff:
			s.automation.SetFanManual(ctx, now, mode == automation.ModeOn)
		default:
			return fmt.Errorf("%w: %d", automation.ErrUnknownMode, mode)
		}

		return nil
	})
}

// SetLight switches the light mode.
func (s *service) SetLight(ctx context.Context, mode automation.Mode) error {
	return s.exec(ctx, func(ctx context.Context, now time.Time) error {
		switch mode {
		case automation.ModeAuto:
			s.automation.SetLightAuto(ctx)
		case automation.ModeOn, automation.ModeOff:
			s.automation.SetLightManual(ctx, now, mode == automation.ModeOn)
		default:
			return fmt.Errorf("%w: %d", automation.ErrUnknownMode, mode)
		}

		return nil
	})
}

// ReportLux feeds an ambient light reading.
func (s *service) ReportLux(ctx context.Context, lux float64) error {
	if lux < 0 || math.IsNaN(lux) || math.IsInf(lux, 0) {
		return fmt.Errorf("%w: %v", station.ErrInvalidLux, lux)
	}

	return s.exec(ctx, func(context.Context, time.Time) error {
		s.automation.OnLuxUpdate(lux)
		s.panel.OuterState(true)
		s.outerLit = true

		return nil
	})
}

// SetAlarmHour stores the wake-up hour; a negative hour clears it.
func (s *service) SetAlarmHour(ctx context.Context, hour int) error {
	return s.exec(ctx, func(ctx context.Context, _ time.Time) error {
		return s.chime.SetAlarmHour(ctx, hour)
	})
}

// SetHourlyBeep enables or disables the hourly chime.
func (s *service) SetHourlyBeep(ctx context.Context, on bool) error {
	return s.exec(ctx, func(ctx context.Context, _ time.Time) error {
		return s.chime.SetHourlyBeep(ctx, on)
	})
}

// Status returns the current snapshot.
func (s *service) Status(ctx context.Context) (station.Snapshot, error) {
	result := make(chan station.Snapshot, 1)

	err := s.exec(ctx, func(_ context.Context, now time.Time) error {
		result <- s.snapshot(now)

		return nil
	})
	if err != nil {
		return station.Snapshot{}, err
	}

	return <-result, nil
}
