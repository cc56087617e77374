package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"audio-transcriber/domain"
)

func TestPreprocessNormalizesToUnitPeak(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.PreEmphasis = 0 // isolate the gain stage

	buf := domain.AudioBuffer{Samples: []float64{0.1, -0.25, 0.2}, SampleRate: 44100}
	out := Preprocess(buf, cfg)

	assert.InDelta(0.4, out.Samples[0], 1e-9)
	assert.InDelta(-1.0, out.Samples[1], 1e-9)
	assert.InDelta(0.8, out.Samples[2], 1e-9)

	// the input buffer is untouched
	assert.Equal(0.1, buf.Samples[0])
}

func TestPreprocessPreEmphasis(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()

	buf := domain.AudioBuffer{Samples: []float64{1, 1, 1, 1}, SampleRate: 44100}
	out := Preprocess(buf, cfg)

	// the first sample has no predecessor; the rest are differentiated
	assert.InDelta(1.0, out.Samples[0], 1e-9)
	for _, s := range out.Samples[1:] {
		assert.InDelta(1-cfg.PreEmphasis, s, 1e-9)
	}
}

func TestPreprocessAttenuatesLowFrequencies(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()

	rms := func(freq float64) float64 {
		buf := domain.AudioBuffer{Samples: make([]float64, 4096), SampleRate: cfg.SampleRate}
		for i := range buf.Samples {
			buf.Samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(cfg.SampleRate))
		}
		out := Preprocess(buf, cfg)
		sum := 0.0
		for _, s := range out.Samples {
			sum += s * s
		}
		return math.Sqrt(sum / float64(len(out.Samples)))
	}

	assert.Less(rms(55), rms(3520))
}

func TestPreprocessSilenceStaysSilent(t *testing.T) {
	cfg := DefaultConfig()
	out := Preprocess(domain.AudioBuffer{Samples: make([]float64, 128), SampleRate: 44100}, cfg)
	for _, s := range out.Samples {
		assert.Zero(t, s)
	}
}
