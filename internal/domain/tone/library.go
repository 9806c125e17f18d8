package tone

// Built-in melodies. Index 0 is the wake-up alarm; the rest rotate as the
// hourly chime.
//
//nolint:gochecknoglobals // Read-only melody library.
var library = [...]string{
	"160:E5,G5,E6=4,C6,D6,G6=4,p2,E5,G5,E6=4,C6,D6,G6=9",
	"120:C5=4,E5=4,G5=4,C6=8",
	"120:G5=4,E5=4,C5=8",
	"140:E5=2,D5=2,C5=2,D5=2,E5=2,E5=2,E5=6",
	"100:C5=4,C5=4,G5=4,G5=4,A5=4,A5=4,G5=8",
	"110:A4=4,C5=4,E5=8,p4,E5=4,C5=4,A4=8",
	"90:F5=4,A5=4,C6=8",
	"80:E5=6,C5=6,D5=6,G4=9,p2,G4=6,D5=6,E5=6,C5=9",
	"130-1:D5=3,F5#=3,A5=3,D6=6,p2,A5=3,D6=9",
}

// MelodyCount returns the number of built-in melodies.
func MelodyCount() int {
	return len(library)
}

// Melody returns a built-in melody script by index.
func Melody(index int) (string, bool) {
	if index < 0 || index >= len(library) {
		return "", false
	}

	return library[index], true
}
