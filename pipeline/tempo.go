package pipeline

import (
	"math"

	"audio-transcriber/domain"
	"audio-transcriber/util"
)

// EstimateTempo derives beats-per-minute from the dominant periodicity of
// the onset-strength envelope, searched by autocorrelation over the
// configured BPM range. A silent envelope has no periodicity; that is a
// fatal condition rather than a silent default.
func EstimateTempo(envelope []float64, cfg Config) (domain.TempoInfo, error) {
	var tempo domain.TempoInfo

	if util.Max(envelope) <= 0 {
		return tempo, ErrSilentInput
	}

	framesPerSecond := float64(cfg.SampleRate) / float64(cfg.HopSize)
	minLag := int(math.Round(60 / cfg.MaxBPM * framesPerSecond))
	maxLag := int(math.Round(60 / cfg.MinBPM * framesPerSecond))
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(envelope) {
		maxLag = len(envelope) - 1
	}
	if maxLag < minLag {
		return tempo, ErrSilentInput
	}

	bestLag, bestCorr := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		corr := 0.0
		for t := 0; t+lag < len(envelope); t++ {
			corr += envelope[t] * envelope[t+lag]
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	if bestLag == 0 {
		// a single transient correlates with nothing; no beat grid exists
		return tempo, ErrSilentInput
	}

	beatLength := float64(bestLag) / framesPerSecond
	tempo.BeatsPerMinute = 60 / beatLength
	tempo.BeatLengthSeconds = beatLength
	return tempo, nil
}
