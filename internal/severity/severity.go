package severity

import "math"

// Palette, ascending severity.
const (
	Green      = "green"
	LightGreen = "lightgreen"
	Yellow     = "yellow"
	Orange     = "orange"
	Red        = "red"
)

var palette = [...]string{Green, LightGreen, Yellow, Orange, Red}

// Level returns the severity level of a magnitude, 0 (lowest) to 4.
// Boundary magnitudes belong to the higher level.
func Level(mag float64) int {
	switch {
	case mag >= 6:
		return 4
	case mag >= 5:
		return 3
	case mag >= 4:
		return 2
	case mag >= 3:
		return 1
	default:
		return 0
	}
}

// Color maps a magnitude to its display color.
func Color(mag float64) string {
	return palette[Level(mag)]
}

// Radius maps a magnitude to a marker radius in metres.
func Radius(mag float64) float64 {
	return math.Pow(2, mag) * 1000
}

// Colors returns the palette in ascending severity.
func Colors() []string {
	out := make([]string, len(palette))
	copy(out, palette[:])
	return out
}
