package pipeline

import "math"

// salienceMatrix is the time-frequency result of pitch analysis: for every
// analysis frame and retained bin, a refined frequency estimate and a
// salience normalized to [0, 1] across the whole run. Bins that hold no
// spectral peak stay zero.
type salienceMatrix struct {
	freqs      [][]float64
	sals       [][]float64
	hopSize    int
	sampleRate int
}

func (m *salienceMatrix) frames() int {
	return len(m.sals)
}

// frameForTime maps a timestamp onto the fixed hop grid.
func (m *salienceMatrix) frameForTime(t float64) int {
	return int(math.Round(t * float64(m.sampleRate) / float64(m.hopSize)))
}

// AnalyzeSalience scans each frame of the (harmonic) spectrogram for local
// spectral peaks inside the configured pitch band and refines their
// frequency by parabolic interpolation around the peak bin. The salience
// threshold is relative to the loudest bin of the frame; lowering it picks
// up quieter harmonics at the cost of false positives.
func AnalyzeSalience(spec *spectrogram, cfg Config) *salienceMatrix {
	lowBin := spec.binFor(cfg.MinFrequency)
	if lowBin < 1 {
		lowBin = 1
	}
	highBin := spec.binFor(cfg.MaxFrequency)

	nFrames := len(spec.mags)
	matrix := &salienceMatrix{
		freqs:      make([][]float64, nFrames),
		sals:       make([][]float64, nFrames),
		hopSize:    spec.hopSize,
		sampleRate: spec.sampleRate,
	}

	globalMax := 0.0
	for t := 0; t < nFrames; t++ {
		mags := spec.mags[t]
		nBins := len(mags)
		matrix.freqs[t] = make([]float64, nBins)
		matrix.sals[t] = make([]float64, nBins)

		frameMax := 0.0
		for b := lowBin; b <= highBin && b < nBins; b++ {
			if mags[b] > frameMax {
				frameMax = mags[b]
			}
		}
		if frameMax == 0 {
			continue
		}
		floor := cfg.SalienceThreshold * frameMax

		for b := lowBin; b <= highBin && b+1 < nBins; b++ {
			if mags[b] < floor || mags[b] <= mags[b-1] || mags[b] < mags[b+1] {
				continue
			}
			freq, mag := interpolatePeak(mags, b, spec)
			if freq <= 0 {
				continue
			}
			matrix.freqs[t][b] = freq
			matrix.sals[t][b] = mag
			if mag > globalMax {
				globalMax = mag
			}
		}
	}

	if globalMax > 0 {
		for t := range matrix.sals {
			for b := range matrix.sals[t] {
				matrix.sals[t][b] /= globalMax
			}
		}
	}
	return matrix
}

// interpolatePeak fits a parabola through the peak bin and its neighbors,
// returning the refined frequency and magnitude.
func interpolatePeak(mags []float64, b int, spec *spectrogram) (float64, float64) {
	left, center, right := mags[b-1], mags[b], mags[b+1]
	denom := left - 2*center + right

	shift := 0.0
	if denom != 0 {
		shift = 0.5 * (left - right) / denom
	}
	if shift > 0.5 {
		shift = 0.5
	} else if shift < -0.5 {
		shift = -0.5
	}

	freq := (float64(b) + shift) * float64(spec.sampleRate) / float64(spec.frameSize)
	mag := center - 0.25*(left-right)*shift
	return freq, mag
}
