package tone

import (
	"strconv"
	"strings"
	"time"
)

const (
	// defaultTickDuration applies when a script has no usable tempo.
	defaultTickDuration = 75 * time.Millisecond
	// tempoScale is the number of milliseconds per tick at tempo 1.
	tempoScale = 7500

	// defaultTicks is the length of a note or rest without an override.
	defaultTicks = 8
	minTicks     = 1
	maxTicks     = 9

	// defaultOctave applies to a note letter without an octave digit.
	defaultOctave = 4
)

// tokenKind classifies an interpreted melody token.
type tokenKind int

const (
	tokenEnd tokenKind = iota
	tokenRest
	tokenNote
)

// token is one interpreted step of a melody.
type token struct {
	kind      tokenKind
	frequency uint
	ticks     int
}

// header is the parsed "TEMPO[-SHIFT]:" prefix of a script.
type header struct {
	tick  time.Duration
	shift int
	body  string
}

// parseHeader splits a script into its timing header and note body.
// A script without ':' is all body and plays at the default tick.
func parseHeader(script string) header {
	h := header{tick: defaultTickDuration, body: script}

	colon := strings.IndexByte(script, ':')
	if colon < 0 {
		return h
	}

	h.body = script[colon+1:]
	head := strings.TrimSpace(script[:colon])

	tempoPart, shiftPart, hasShift := strings.Cut(head, "-")

	if tempo, err := strconv.Atoi(strings.TrimSpace(tempoPart)); err == nil && tempo > 0 {
		h.tick = max(time.Duration(tempoScale/tempo)*time.Millisecond, time.Millisecond)
	}

	if hasShift {
		if shift, err := strconv.Atoi(strings.TrimSpace(shiftPart)); err == nil {
			h.shift = shift
		}
	}

	return h
}

// nextToken interprets the token starting at pos and returns it with the
// position of the following token. It never reads past the end of body;
// at or beyond the end it yields tokenEnd.
func nextToken(body string, pos, shift int) (token, int) {
	if pos >= len(body) {
		return token{kind: tokenEnd}, len(body)
	}

	raw := body[pos:]
	next := len(body)

	if comma := strings.IndexByte(raw, ','); comma >= 0 {
		raw = raw[:comma]
		next = pos + comma + 1
	}

	return interpret(strings.TrimSpace(raw), shift), next
}

// interpret decodes a single token. It has no failure state: anything it
// cannot make sense of degrades to a rest or to the nearest valid note.
func interpret(raw string, shift int) token {
	if raw == "" {
		return token{kind: tokenRest, ticks: defaultTicks}
	}

	if raw[0] == 'p' || raw[0] == 'P' {
		ticks, _ := readTicks(raw[1:])

		return token{kind: tokenRest, ticks: ticks}
	}

	letter := raw[0]
	i := 1

	octave := defaultOctave
	if i < len(raw) && isDigit(raw[i]) {
		octave = int(raw[i] - '0')
		i++
	}

	var accidental byte
	if i < len(raw) && (raw[i] == '#' || raw[i] == 'b') {
		accidental = raw[i]
		i++
	}

	ticks := defaultTicks
	if i < len(raw) && raw[i] == '=' {
		ticks, _ = readTicks(raw[i+1:])
	}

	return token{
		kind:      tokenNote,
		frequency: Frequency(letter, octave-shift, accidental),
		ticks:     ticks,
	}
}

// readTicks reads leading digits as a tick count clamped to [1, 9].
// Without digits it returns the default length and false.
func readTicks(s string) (int, bool) {
	n, digits := 0, 0
	for digits < len(s) && isDigit(s[digits]) {
		if n <= maxTicks {
			n = n*10 + int(s[digits]-'0')
		}
		digits++
	}

	if digits == 0 {
		return defaultTicks, false
	}

	return min(max(n, minTicks), maxTicks), true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
