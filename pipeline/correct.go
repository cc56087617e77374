package pipeline

import "math"

// pianoKeys is the full 88-key table of canonical MIDI numbers, A0 to C8.
var pianoKeys = buildPianoKeys()

func buildPianoKeys() []int {
	keys := make([]int, 88)
	for i := range keys {
		keys[i] = 21 + i
	}
	return keys
}

// CorrectPitch snaps a fractional MIDI estimate to a canonical semitone.
//
// Within the cents tolerance the rounded semitone is accepted, except near
// an octave boundary: a strongly sharp B is really the C above it and a
// strongly flat C is really the B below, so the semitone is nudged to
// resolve the ambiguity. Estimates outside the tolerance do not
// correspond to any standard semitone and are snapped to the nearest
// piano key instead.
func CorrectPitch(raw float64, cfg Config) int {
	rounded := math.Round(raw)
	cents := (raw - rounded) * 100

	if math.Abs(cents) < cfg.ToleranceCents {
		pitch := int(rounded)
		switch pitchClass(pitch) {
		case 11: // B
			if cents > cfg.OctaveBoundaryCents {
				pitch++
			}
		case 0: // C
			if cents < -cfg.OctaveBoundaryCents {
				pitch--
			}
		}
		return pitch
	}

	nearest := pianoKeys[0]
	for _, key := range pianoKeys[1:] {
		if math.Abs(raw-float64(key)) < math.Abs(raw-float64(nearest)) {
			nearest = key
		}
	}
	return nearest
}

func pitchClass(pitch int) int {
	return ((pitch % 12) + 12) % 12
}
