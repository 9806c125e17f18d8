package tone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInterpret(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		raw   string
		shift int
		want  token
	}{
		{name: "empty is default rest", raw: "", want: token{kind: tokenRest, ticks: 8}},
		{name: "bare pause", raw: "p", want: token{kind: tokenRest, ticks: 8}},
		{name: "pause with length", raw: "p3", want: token{kind: tokenRest, ticks: 3}},
		{name: "pause clamped low", raw: "p0", want: token{kind: tokenRest, ticks: 1}},
		{name: "pause clamped high", raw: "p12", want: token{kind: tokenRest, ticks: 9}},
		{name: "plain note", raw: "G4", want: token{kind: tokenNote, frequency: 392, ticks: 8}},
		{name: "sharp", raw: "G4#", want: token{kind: tokenNote, frequency: 415, ticks: 8}},
		{name: "flat", raw: "A4b", want: token{kind: tokenNote, frequency: 415, ticks: 8}},
		{name: "duration override", raw: "C5=2", want: token{kind: tokenNote, frequency: 523, ticks: 2}},
		{name: "duration clamped", raw: "C5=0", want: token{kind: tokenNote, frequency: 523, ticks: 1}},
		{name: "lower case letter", raw: "a4", want: token{kind: tokenNote, frequency: 440, ticks: 8}},
		{name: "unknown letter uses first column", raw: "X4", want: token{kind: tokenNote, frequency: 262, ticks: 8}},
		{name: "octave clamped", raw: "C9", want: token{kind: tokenNote, frequency: 4186, ticks: 8}},
		{name: "shift lowers octave", raw: "C5", shift: 1, want: token{kind: tokenNote, frequency: 262, ticks: 8}},
		{name: "negative shift clamped", raw: "C5", shift: -5, want: token{kind: tokenNote, frequency: 4186, ticks: 8}},
		{name: "shift clamped at bottom", raw: "C1", shift: 3, want: token{kind: tokenNote, frequency: 16, ticks: 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, interpret(tt.raw, tt.shift))
		})
	}
}

func TestParseHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		script string
		want   header
	}{
		{script: "100:G4", want: header{tick: 75 * time.Millisecond, body: "G4"}},
		{script: "120-1:A4", want: header{tick: 62 * time.Millisecond, shift: 1, body: "A4"}},
		{script: "100--1:A4", want: header{tick: 75 * time.Millisecond, shift: -1, body: "A4"}},
		{script: "0:A4", want: header{tick: defaultTickDuration, body: "A4"}},
		{script: ":A4", want: header{tick: defaultTickDuration, body: "A4"}},
		{script: "G4,C5", want: header{tick: defaultTickDuration, body: "G4,C5"}},
		{script: "10000:C5", want: header{tick: time.Millisecond, body: "C5"}},
	}

	for _, tt := range tests {
		t.Run(tt.script, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, parseHeader(tt.script))
		})
	}
}

func TestNextTokenWalksWholeBody(t *testing.T) {
	t.Parallel()

	collect := func(body string) []tokenKind {
		var kinds []tokenKind

		for pos := 0; ; {
			tok, next := nextToken(body, pos, 0)
			require.LessOrEqual(t, next, len(body))

			kinds = append(kinds, tok.kind)
			if tok.kind == tokenEnd {
				return kinds
			}

			pos = next
		}
	}

	require.Equal(t, []tokenKind{tokenNote, tokenRest, tokenNote, tokenEnd}, collect("G4,,C5=2"))
	require.Equal(t, []tokenKind{tokenNote, tokenEnd}, collect("G4,"))
	require.Equal(t, []tokenKind{tokenEnd}, collect(""))
	require.Equal(t, []tokenKind{tokenRest, tokenRest, tokenEnd}, collect(",,"))
}

func TestFrequency(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint(440), Frequency('A', 4, 0))
	require.Equal(t, uint(466), Frequency('A', 4, '#'))
	require.Equal(t, uint(16), Frequency('C', -3, 0))
	require.Equal(t, uint(7902), Frequency('B', 12, 0))
}
