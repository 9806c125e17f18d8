package automation

import "time"

// Default fan law and light parameters.
const (
	MinOnLength  = 3 * time.Minute
	MaxOnLength  = 15 * time.Minute
	MinOffLength = 5 * time.Minute
	MaxOffLength = 60 * time.Minute

	// MinRate and MaxRate bound the activity rate in events per minute.
	MinRate = 0.2
	MaxRate = 2.0

	// PermOnThreshold keeps the fan on instead of resting it.
	PermOnThreshold = 4.0
	// PermOffThreshold keeps the fan resting instead of starting it.
	PermOffThreshold = 0.05

	MinCut = 0.25
	MaxCut = 1.0

	// LightOffset and ToneOffset discount activity caused by the station itself.
	LightOffset = 3
	ToneOffset  = 6

	LightIdleTimeout = 5 * time.Minute

	// DarkLux turns the light on; DarkLuxWhenOn keeps it on, since the
	// light itself raises the reading.
	DarkLux       = 30.0
	DarkLuxWhenOn = 50.0

	// Automatic light is skipped from SkipFromHour to SkipToHour.
	SkipFromHour = 7
	SkipToHour   = 22
)

// Params tunes the fan law and the light logic.
type Params struct {
	MinOn, MaxOn   time.Duration
	MinOff, MaxOff time.Duration

	MinRate, MaxRate float64
	PermOn, PermOff  float64
	MinCut, MaxCut   float64

	LightOffset, ToneOffset int

	LightIdle              time.Duration
	DarkLux, DarkLuxWhenOn float64
	SkipFrom, SkipTo       int
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		MinOn:         MinOnLength,
		MaxOn:         MaxOnLength,
		MinOff:        MinOffLength,
		MaxOff:        MaxOffLength,
		MinRate:       MinRate,
		MaxRate:       MaxRate,
		PermOn:        PermOnThreshold,
		PermOff:       PermOffThreshold,
		MinCut:        MinCut,
		MaxCut:        MaxCut,
		LightOffset:   LightOffset,
		ToneOffset:    ToneOffset,
		LightIdle:     LightIdleTimeout,
		DarkLux:       DarkLux,
		DarkLuxWhenOn: DarkLuxWhenOn,
		SkipFrom:      SkipFromHour,
		SkipTo:        SkipToHour,
	}
}

// Transition describes a fan state change about to happen.
type Transition struct {
	// TurnOn is the requested new state.
	TurnOn bool
	// Activity is the raw activity counter.
	Activity    int
	LightOn     bool
	TonePlaying bool
	// Previous is the timeout of the period being left.
	Previous time.Duration
	// Elapsed is nonzero when the period is cut short by hand.
	Elapsed time.Duration
	// Force allows the permanent on and off overrides.
	Force bool
}

// Decide applies the fan law. It returns the state actually entered and its
// timeout, which always lies within that state's bounds.
func (p Params) Decide(t Transition) (bool, time.Duration) {
	activity := t.Activity
	if t.LightOn {
		activity -= p.LightOffset
	}

	if t.TonePlaying {
		activity -= p.ToneOffset
	}

	activity = max(activity, 0)

	minutes := t.Previous.Minutes()
	if minutes <= 0 {
		minutes = p.MinOn.Minutes()
	}

	nfreq := float64(activity) / minutes

	on := t.TurnOn

	if t.Force {
		switch {
		case !on && nfreq >= p.PermOn:
			on = true
		case on && nfreq <= p.PermOff:
			on = false
		}
	}

	// Low activity maps to 1, high activity to 0.
	rate := clamp(nfreq, p.MinRate, p.MaxRate)
	x := (p.MaxRate - rate) / (p.MaxRate - p.MinRate)

	lo, hi := p.MinOff, p.MaxOff
	timeout := lerp(p.MinOff, p.MaxOff, x)

	if on {
		lo, hi = p.MinOn, p.MaxOn
		timeout = lerp(p.MaxOn, p.MinOn, x)
	}

	if t.Elapsed > 0 && t.Previous > 0 {
		cut := clamp(float64(t.Elapsed)/float64(t.Previous), p.MinCut, p.MaxCut)
		timeout = time.Duration(float64(timeout) * cut)
	}

	return on, min(max(timeout, lo), hi)
}

// Decay returns the activity counter after a transition.
func Decay(activity int) int {
	return activity * 3 / 4
}

// inSkipWindow reports whether hour is inside the daytime window.
func (p Params) inSkipWindow(hour int) bool {
	return hour >= p.SkipFrom && hour < p.SkipTo
}

func lerp(from, to time.Duration, x float64) time.Duration {
	return from + time.Duration(float64(to-from)*x)
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
