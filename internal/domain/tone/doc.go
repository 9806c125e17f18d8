// Package tone implements the tone and melody sequencer.
//
// A Sequencer drives the square-wave tone pin in one of four modes: idle,
// continuous tone, periodic on/off tone, or melody. Timing comes from a
// periodic timer whose callback advances the active mode by one tick; the
// main loop starts and stops modes and polls for finished melodies.
//
// Melody scripts use a compact notation, "TEMPO[-SHIFT]:NOTE,NOTE,...",
// interpreted one token per tick rather than compiled ahead of time:
//
//	100:G4,,C5=2     G4 for 8 ticks, an 8-tick rest, C5 for 2 ticks
//	120-1:A4#=4,p2   A3# for 4 ticks, a 2-tick rest
//
// A tick lasts 7500/TEMPO milliseconds.
package tone
