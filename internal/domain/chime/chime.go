// Package chime plays the wake-up alarm and the hourly chime.
package chime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oshokin/cstation/internal/domain/tone"
	"github.com/oshokin/cstation/internal/repository/eeprom"
)

// Hourly chimes play from FirstHour to LastHour inclusive.
const (
	FirstHour = 6
	LastHour  = 22
)

// noHour is stored when no alarm is set; any value of 24 or more reads as none.
const noHour byte = eeprom.Erased

// ErrInvalidHour is returned for alarm hours past 23.
var ErrInvalidHour = errors.New("invalid alarm hour")

// Player starts melody scripts.
type Player interface {
	StartMelody(script string)
}

// Storage keeps the alarm hour and hourly flag.
type Storage interface {
	ReadByte(addr int) byte
	WriteByte(ctx context.Context, addr int, b byte) error
}

// Chime watches hour changes. It belongs to the station main loop.
type Chime struct {
	store  Storage
	player Player
	log    *zap.SugaredLogger

	lastHour int
}

// New creates a chime that stays quiet until it has seen a first hour.
func New(store Storage, player Player, log *zap.SugaredLogger) *Chime {
	return &Chime{
		store:    store,
		player:   player,
		log:      log,
		lastHour: -1,
	}
}

// OnTick plays a melody when the hour changes on a trusted clock.
// While quiet the hour change is consumed without playing, so the chime
// never covers a guard siren and never plays late. It reports whether
// something was played.
func (c *Chime) OnTick(now time.Time, timeSet, quiet bool) bool {
	if !timeSet {
		c.lastHour = -1

		return false
	}

	hour := now.Hour()
	if hour == c.lastHour {
		return false
	}

	first := c.lastHour < 0
	c.lastHour = hour

	if first {
		return false
	}

	if quiet {
		c.log.Debugw("chime skipped", "hour", hour)

		return false
	}

	index, ok := c.melodyFor(hour)
	if !ok {
		return false
	}

	script, ok := tone.Melody(index)
	if !ok {
		return false
	}

	c.log.Infow("chime", "hour", hour, "melody", index)
	c.player.StartMelody(script)

	return true
}

// melodyFor picks the alarm melody at the alarm hour, otherwise rotates
// through the rest of the library during the day.
func (c *Chime) melodyFor(hour int) (int, bool) {
	if alarm, ok := c.AlarmHour(); ok && alarm == hour {
		return 0, true
	}

	if !c.HourlyBeep() || hour < FirstHour || hour > LastHour {
		return 0, false
	}

	count := tone.MelodyCount()
	if count < 2 {
		return 0, false
	}

	return (hour-FirstHour)%(count-1) + 1, true
}

// AlarmHour returns the wake-up hour, if one is set.
func (c *Chime) AlarmHour() (int, bool) {
	b := c.store.ReadByte(eeprom.AddrAlarmHour)
	if b >= 24 {
		return 0, false
	}

	return int(b), true
}

// SetAlarmHour stores the wake-up hour; a negative hour clears it.
func (c *Chime) SetAlarmHour(ctx context.Context, hour int) error {
	if hour >= 24 {
		return fmt.Errorf("%w: %d", ErrInvalidHour, hour)
	}

	b := noHour
	if hour >= 0 {
		b = byte(hour)
	}

	if err := c.store.WriteByte(ctx, eeprom.AddrAlarmHour, b); err != nil {
		return fmt.Errorf("save alarm hour: %w", err)
	}

	return nil
}

// HourlyBeep reports whether the hourly chime is enabled.
func (c *Chime) HourlyBeep() bool {
	return c.store.ReadByte(eeprom.AddrHourlyBeep) == 1
}

// SetHourlyBeep enables or disables the hourly chime.
func (c *Chime) SetHourlyBeep(ctx context.Context, on bool) error {
	var b byte
	if on {
		b = 1
	}

	if err := c.store.WriteByte(ctx, eeprom.AddrHourlyBeep, b); err != nil {
		return fmt.Errorf("save hourly beep: %w", err)
	}

	return nil
}
