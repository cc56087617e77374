package pipeline

import "audio-transcriber/domain"

// AssignClef routes a corrected pitch to a staff. Outside the hysteresis
// band around the split the pitch range decides; inside it, a salient
// pitch is more likely melody and leans treble.
func AssignClef(pitch int, salience float64, cfg Config) domain.Staff {
	switch {
	case pitch > cfg.ClefSplit+cfg.ClefHysteresis:
		return domain.Treble
	case pitch < cfg.ClefSplit-cfg.ClefHysteresis:
		return domain.Bass
	case salience > cfg.MelodyBias:
		return domain.Treble
	default:
		return domain.Bass
	}
}
