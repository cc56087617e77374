package pipeline

import "math"

// quantGrid is the fixed set of renderable durations in quarter-note
// units, scanned in order so the first entry wins an exact tie.
var quantGrid = []float64{4, 2, 1.5, 1, 0.75, 0.5, 0.25, 0.125}

// minQuarterLength is the shortest renderable note.
const minQuarterLength = 0.125

// QuantizeDuration snaps a raw inter-onset gap to the nearest grid
// duration and returns it in quarter-note units, floored at the minimum
// renderable length.
func QuantizeDuration(seconds, beatLength float64) float64 {
	beats := seconds / beatLength

	best := quantGrid[0]
	for _, g := range quantGrid[1:] {
		if math.Abs(beats-g) < math.Abs(beats-best) {
			best = g
		}
	}
	if best < minQuarterLength {
		best = minQuarterLength
	}
	return best
}

// QuantizeSeconds is QuantizeDuration rescaled back to seconds, so that
// QuantizeSeconds(d, b)/b is always a member of the grid.
func QuantizeSeconds(seconds, beatLength float64) float64 {
	return QuantizeDuration(seconds, beatLength) * beatLength
}
