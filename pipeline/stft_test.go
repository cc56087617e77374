package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"audio-transcriber/util"
)

func TestSpectrogramPeaksAtSineFrequency(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()

	samples := make([]float64, cfg.SampleRate/2)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 440 * float64(i) / float64(cfg.SampleRate))
	}

	spec := newSTFT(cfg.FrameSize, cfg.HopSize, cfg.SampleRate).Spectrogram(samples)
	assert.NotEmpty(spec.mags)

	// the loudest bin of a full frame maps back to roughly 440 Hz
	peakBin := util.ArgMax(spec.mags[0])
	assert.InDelta(440, spec.binHz(peakBin), spec.binHz(1))
}

func TestSpectrogramFrameCount(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()

	spec := newSTFT(cfg.FrameSize, cfg.HopSize, cfg.SampleRate).Spectrogram(make([]float64, 5*cfg.HopSize))
	assert.Len(spec.mags, 5)
	assert.Len(spec.mags[0], cfg.FrameSize/2+1)
}

func TestBinMappingRoundTrip(t *testing.T) {
	assert := assert.New(t)
	spec := &spectrogram{frameSize: 2048, hopSize: 512, sampleRate: 44100}

	for _, hz := range []float64{27.5, 440, 1000, 4186} {
		bin := spec.binFor(hz)
		assert.InDelta(hz, spec.binHz(bin), spec.binHz(1)/2+1e-9, "bin mapping drifts at %.1f Hz", hz)
	}
	assert.Equal(0, spec.binFor(-5))
	assert.Equal(1024, spec.binFor(1e9))
}

func TestHarmonicComponentSuppressesClicks(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()

	samples := make([]float64, cfg.SampleRate)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(cfg.SampleRate))
	}
	// a broadband click in the middle of the tone
	mid := len(samples) / 2
	for i := mid; i < mid+64; i++ {
		samples[i] += 0.9
	}

	spec := newSTFT(cfg.FrameSize, cfg.HopSize, cfg.SampleRate).Spectrogram(samples)
	harm := harmonicComponent(spec, cfg)

	toneBin := spec.binFor(440)
	// pick the frame whose window is centered on the click
	clickFrame := (mid - cfg.FrameSize/2) / cfg.HopSize
	highBin := spec.binFor(3000)

	// the sustained tone survives the mask
	assert.Greater(harm.mags[clickFrame][toneBin], 0.5*spec.mags[clickFrame][toneBin])
	// broadband click energy far from the tone is mostly removed
	assert.Less(harm.mags[clickFrame][highBin], 0.5*spec.mags[clickFrame][highBin])
}
