package pipeline

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"audio-transcriber/util"
)

// spectrogram is the shared short-time magnitude representation. Rows are
// analysis frames on the fixed hop grid, columns are FFT bins.
type spectrogram struct {
	mags       [][]float64
	frameSize  int
	hopSize    int
	sampleRate int
}

func (sp *spectrogram) binHz(bin int) float64 {
	return float64(bin) * float64(sp.sampleRate) / float64(sp.frameSize)
}

// binFor returns the FFT bin closest to hz, clamped to the valid range.
func (sp *spectrogram) binFor(hz float64) int {
	bin := int(math.Round(hz * float64(sp.frameSize) / float64(sp.sampleRate)))
	return util.Clamp(bin, 0, sp.frameSize/2)
}

type stft struct {
	frameSize  int
	hopSize    int
	sampleRate int
	fft        *fourier.FFT
	window     []float64
}

func newSTFT(frameSize, hopSize, sampleRate int) *stft {
	window := make([]float64, frameSize)
	for i := range window {
		// Hann
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(frameSize-1)))
	}
	return &stft{
		frameSize:  frameSize,
		hopSize:    hopSize,
		sampleRate: sampleRate,
		fft:        fourier.NewFFT(frameSize),
		window:     window,
	}
}

// Spectrogram computes Hann-windowed magnitude frames every hopSize
// samples. The tail frame is zero padded.
func (s *stft) Spectrogram(samples []float64) *spectrogram {
	nBins := s.frameSize/2 + 1
	frame := make([]float64, s.frameSize)
	coeffs := make([]complex128, nBins)

	var mags [][]float64
	for start := 0; start < len(samples); start += s.hopSize {
		for i := range frame {
			if start+i < len(samples) {
				frame[i] = samples[start+i] * s.window[i]
			} else {
				frame[i] = 0
			}
		}
		s.fft.Coefficients(coeffs, frame)

		row := make([]float64, nBins)
		for i, c := range coeffs {
			row[i] = math.Hypot(real(c), imag(c))
		}
		mags = append(mags, row)
	}
	return &spectrogram{
		mags:       mags,
		frameSize:  s.frameSize,
		hopSize:    s.hopSize,
		sampleRate: s.sampleRate,
	}
}

// harmonicComponent suppresses percussive energy with a median-filtering
// mask: harmonic content is smooth across time, percussive content is
// smooth across frequency. Only the pitch analysis consumes the result;
// onset analysis keeps the full spectrogram.
func harmonicComponent(spec *spectrogram, cfg Config) *spectrogram {
	nFrames := len(spec.mags)
	if nFrames == 0 {
		return spec
	}
	nBins := len(spec.mags[0])
	out := make([][]float64, nFrames)

	halfT := cfg.HarmonicFilterFrames / 2
	halfF := cfg.PercussiveFilterBins / 2

	column := make([]float64, 0, cfg.HarmonicFilterFrames)
	row := make([]float64, 0, cfg.PercussiveFilterBins)

	for t := 0; t < nFrames; t++ {
		out[t] = make([]float64, nBins)
		for b := 0; b < nBins; b++ {
			column = column[:0]
			for dt := -halfT; dt <= halfT; dt++ {
				if t+dt >= 0 && t+dt < nFrames {
					column = append(column, spec.mags[t+dt][b])
				}
			}
			row = row[:0]
			for db := -halfF; db <= halfF; db++ {
				if b+db >= 0 && b+db < nBins {
					row = append(row, spec.mags[t][b+db])
				}
			}

			h := util.Median(column)
			p := util.Median(row)
			denom := h*h + p*p
			if denom > 0 {
				out[t][b] = spec.mags[t][b] * (h * h / denom)
			}
		}
	}
	return &spectrogram{
		mags:       out,
		frameSize:  spec.frameSize,
		hopSize:    spec.hopSize,
		sampleRate: spec.sampleRate,
	}
}
