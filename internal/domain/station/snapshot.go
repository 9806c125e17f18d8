// Package station holds the state and errors shared by the station surfaces.
package station

import (
	"time"

	"github.com/oshokin/cstation/internal/domain/automation"
	"github.com/oshokin/cstation/internal/domain/guard"
	"github.com/oshokin/cstation/internal/domain/tone"
)

// Snapshot is the station state at one main loop iteration.
type Snapshot struct {
	At         time.Time
	TimeSet    bool
	Tone       tone.State
	Guard      guard.Status
	Automation automation.State
	// AlarmHour is negative when no alarm is set.
	AlarmHour  int
	HourlyBeep bool
}

// Equal compares two snapshots ignoring when they were taken.
func (s Snapshot) Equal(other Snapshot) bool {
	s.At, other.At = time.Time{}, time.Time{}

	return s == other
}

// Fields flattens the snapshot into JSON and protobuf friendly values.
func (s Snapshot) Fields() map[string]any {
	fields := map[string]any{
		"time":                 s.At.UTC().Format(time.RFC3339),
		"time_set":             s.TimeSet,
		"tone_mode":            s.Tone.Mode.String(),
		"tone_frequency":       int64(s.Tone.Frequency),
		"tone_muted":           s.Tone.Muted,
		"tone_led_linked":      s.Tone.LEDLinked,
		"guard_state":          s.Guard.State.String(),
		"guard_presence_delay": s.Guard.PresenceDelay,
		"guard_alert_delay":    s.Guard.AlertDelay,
		"fan_on":               s.Automation.FanOn,
		"fan_auto":             s.Automation.FanAuto,
		"fan_timeout_s":        s.Automation.FanTimeout.Seconds(),
		"activity":             int64(s.Automation.Activity),
		"light_on":             s.Automation.LightOn,
		"light_auto":           s.Automation.LightAuto,
		"hourly_beep":          s.HourlyBeep,
		"lux":                  nil,
		"alarm_hour":           nil,
	}

	if s.Automation.LuxKnown {
		fields["lux"] = s.Automation.Lux
	}

	if s.AlarmHour >= 0 {
		fields["alarm_hour"] = int64(s.AlarmHour)
	}

	return fields
}
