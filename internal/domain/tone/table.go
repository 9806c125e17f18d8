package tone

import "math"

// Note frequencies in Hz; rows are octaves 0..8, columns C D E F G A B.
//
//nolint:gochecknoglobals // Read-only lookup table.
var frequencies = [octaves][7]uint{
	{16, 18, 21, 22, 25, 28, 31},
	{33, 37, 41, 44, 49, 55, 62},
	{65, 73, 82, 87, 98, 110, 123},
	{131, 147, 165, 175, 196, 220, 247},
	{262, 294, 330, 349, 392, 440, 494},
	{523, 587, 659, 698, 784, 880, 988},
	{1047, 1175, 1319, 1397, 1568, 1760, 1976},
	{2093, 2349, 2637, 2794, 3136, 3520, 3951},
	{4186, 4699, 5274, 5588, 6272, 7040, 7902},
}

const (
	octaves   = 9
	maxOctave = octaves - 1

	sharpRatio = 1.059463
	flatRatio  = 0.943874
)

// column maps a note letter to its table column; unknown letters map to 0.
func column(letter byte) int {
	switch letter {
	case 'C', 'c':
		return 0
	case 'D', 'd':
		return 1
	case 'E', 'e':
		return 2
	case 'F', 'f':
		return 3
	case 'G', 'g':
		return 4
	case 'A', 'a':
		return 5
	case 'B', 'b':
		return 6
	default:
		return 0
	}
}

// Frequency returns the tone for a letter and octave with an optional
// accidental ('#', 'b' or 0). The octave is clamped to the table.
func Frequency(letter byte, octave int, accidental byte) uint {
	octave = min(max(octave, 0), maxOctave)

	f := float64(frequencies[octave][column(letter)])

	switch accidental {
	case '#':
		f *= sharpRatio
	case 'b':
		f *= flatRatio
	}

	return uint(math.Round(f))
}
