package pipeline

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"

	"audio-transcriber/domain"
)

// LoadAudio decodes a wav/mp3/ogg file into a mono buffer at the
// configured sample rate. Unreadable or empty input is fatal.
func LoadAudio(path string, cfg Config) (domain.AudioBuffer, error) {
	var buf domain.AudioBuffer

	f, err := os.Open(path)
	if err != nil {
		return buf, fmt.Errorf("opening audio file: %w", err)
	}
	defer f.Close()

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	default:
		return buf, fmt.Errorf("unsupported audio format: %s", filepath.Ext(path))
	}
	if err != nil {
		return buf, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	defer streamer.Close()

	var source beep.Streamer = streamer
	if int(format.SampleRate) != cfg.SampleRate {
		source = beep.Resample(4, format.SampleRate, beep.SampleRate(cfg.SampleRate), streamer)
	}

	samples := drainMono(source)
	if len(samples) == 0 {
		return buf, ErrEmptyAudio
	}
	return domain.AudioBuffer{Samples: samples, SampleRate: cfg.SampleRate}, nil
}

func drainMono(s beep.Streamer) []float64 {
	var mono []float64
	chunk := make([][2]float64, 2048)
	for {
		n, ok := s.Stream(chunk)
		for _, frame := range chunk[:n] {
			mono = append(mono, (frame[0]+frame[1])/2)
		}
		if !ok {
			return mono
		}
	}
}

// Preprocess peak-normalizes the buffer and applies a first-order
// pre-emphasis filter to boost high frequencies. The input buffer is
// left untouched.
func Preprocess(buf domain.AudioBuffer, cfg Config) domain.AudioBuffer {
	out := make([]float64, len(buf.Samples))

	peak := 0.0
	for _, s := range buf.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	gain := 1.0
	if peak > 0 {
		gain = 1 / peak
	}

	prev := 0.0
	for i, s := range buf.Samples {
		norm := s * gain
		out[i] = norm - cfg.PreEmphasis*prev
		prev = norm
	}
	return domain.AudioBuffer{Samples: out, SampleRate: buf.SampleRate}
}
