package pipeline

import (
	"audio-transcriber/util"
)

// onsetStrength computes the spectral-flux envelope shared by tempo
// estimation and onset detection. Positive flux is summed per frequency
// band up to the configured ceiling and the bands are aggregated with the
// median, which keeps a single noisy band from faking a transient. The
// envelope is normalized so Delta is comparable across recordings.
func onsetStrength(spec *spectrogram, cfg Config) []float64 {
	nFrames := len(spec.mags)
	if nFrames == 0 {
		return nil
	}
	ceiling := spec.binFor(cfg.MaxFrequency)
	if ceiling < cfg.BandCount {
		ceiling = cfg.BandCount
	}
	bandWidth := ceiling / cfg.BandCount

	env := make([]float64, nFrames)
	bandFlux := make([]float64, cfg.BandCount)
	for t := 0; t < nFrames; t++ {
		for band := 0; band < cfg.BandCount; band++ {
			lo := band * bandWidth
			hi := lo + bandWidth
			if band == cfg.BandCount-1 {
				hi = ceiling
			}
			sum := 0.0
			for b := lo; b < hi && b < len(spec.mags[t]); b++ {
				prev := 0.0
				if t > 0 {
					prev = spec.mags[t-1][b]
				}
				if d := spec.mags[t][b] - prev; d > 0 {
					sum += d
				}
			}
			bandFlux[band] = sum
		}
		env[t] = util.Median(bandFlux)
	}

	if peak := util.Max(env); peak > 0 {
		for i := range env {
			env[i] /= peak
		}
	}
	return env
}

// DetectOnsets picks peaks from the onset-strength envelope and returns
// their timestamps in seconds, strictly increasing.
//
// A frame qualifies when it is strictly greater than every neighbor in the
// PreMax/PostMax window, exceeds the PreAvg/PostAvg local mean by Delta,
// and lies at least Wait frames after the previously accepted peak. Each
// accepted peak is backtracked to the preceding local minimum so the
// timestamp marks the transient's rise rather than its crest.
func DetectOnsets(envelope []float64, cfg Config) []float64 {
	frameTime := float64(cfg.HopSize) / float64(cfg.SampleRate)

	var onsets []float64
	lastAccepted := -cfg.Wait - 1
	lastTime := -1.0

	for i := range envelope {
		if !isLocalMax(envelope, i, cfg.PreMax, cfg.PostMax) {
			continue
		}
		if envelope[i] < localMean(envelope, i, cfg.PreAvg, cfg.PostAvg)+cfg.Delta {
			continue
		}
		if i-lastAccepted <= cfg.Wait {
			continue
		}
		lastAccepted = i

		t := float64(backtrack(envelope, i)) * frameTime
		// backtracking from distinct peaks can land on a shared minimum;
		// the onset sequence must stay strictly increasing
		if t <= lastTime {
			continue
		}
		lastTime = t
		onsets = append(onsets, t)
	}
	return onsets
}

func isLocalMax(env []float64, i, pre, post int) bool {
	for j := i - pre; j <= i+post; j++ {
		if j < 0 || j >= len(env) || j == i {
			continue
		}
		if env[j] >= env[i] {
			return false
		}
	}
	return env[i] > 0
}

func localMean(env []float64, i, pre, post int) float64 {
	lo := util.Clamp(i-pre, 0, len(env)-1)
	hi := util.Clamp(i+post, 0, len(env)-1)
	sum := 0.0
	for j := lo; j <= hi; j++ {
		sum += env[j]
	}
	return sum / float64(hi-lo+1)
}

func backtrack(env []float64, i int) int {
	for i > 0 && env[i-1] <= env[i] {
		i--
	}
	return i
}
