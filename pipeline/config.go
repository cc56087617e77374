package pipeline

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config groups every tunable of the transcription pipeline. All stages read
// from one validated Config instead of embedding their own magic numbers, so
// a tuning is a selectable preset rather than a hidden constant.
type Config struct {
	Version string `toml:"version"`

	// Preprocessing
	SampleRate           int     `toml:"sample_rate"`
	PreEmphasis          float64 `toml:"pre_emphasis"`
	HarmonicSeparation   bool    `toml:"harmonic_separation"`
	HarmonicFilterFrames int     `toml:"harmonic_filter_frames"`
	PercussiveFilterBins int     `toml:"percussive_filter_bins"`

	// Short-time analysis grid
	FrameSize int `toml:"frame_size"`
	HopSize   int `toml:"hop_size"`

	// Tempo estimation
	BandCount int     `toml:"band_count"`
	MinBPM    float64 `toml:"min_bpm"`
	MaxBPM    float64 `toml:"max_bpm"`

	// Onset peak picking, all window sizes in envelope frames
	PreMax  int     `toml:"pre_max"`
	PostMax int     `toml:"post_max"`
	PreAvg  int     `toml:"pre_avg"`
	PostAvg int     `toml:"post_avg"`
	Delta   float64 `toml:"delta"`
	Wait    int     `toml:"wait"`

	// Pitch salience analysis
	MinFrequency      float64 `toml:"min_frequency"`
	MaxFrequency      float64 `toml:"max_frequency"`
	SalienceThreshold float64 `toml:"salience_threshold"`

	// Candidate extraction
	CandidateThreshold float64 `toml:"candidate_threshold"`
	ForgivenessFactor  float64 `toml:"forgiveness_factor"`
	Lookback           int     `toml:"lookback"`
	DedupSemitones     float64 `toml:"dedup_semitones"`

	// Pitch correction
	ToleranceCents      float64 `toml:"tolerance_cents"`
	OctaveBoundaryCents float64 `toml:"octave_boundary_cents"`

	// Clef assignment
	ClefSplit      int     `toml:"clef_split"`
	ClefHysteresis int     `toml:"clef_hysteresis"`
	MelodyBias     float64 `toml:"melody_bias"`
}

// DefaultConfig is the balanced preset used by the service.
func DefaultConfig() Config {
	return Config{
		Version: "v1",

		SampleRate:           44100,
		PreEmphasis:          0.95,
		HarmonicSeparation:   true,
		HarmonicFilterFrames: 17,
		PercussiveFilterBins: 17,

		FrameSize: 2048,
		HopSize:   512,

		BandCount: 8,
		MinBPM:    40,
		MaxBPM:    200,

		PreMax:  3,
		PostMax: 3,
		PreAvg:  8,
		PostAvg: 8,
		Delta:   0.07,
		Wait:    4,

		MinFrequency:      27.5,   // A0
		MaxFrequency:      4186.0, // C8
		SalienceThreshold: 0.1,

		CandidateThreshold: 0.5,
		ForgivenessFactor:  1.2,
		Lookback:           1,
		DedupSemitones:     2.0,

		ToleranceCents:      40,
		OctaveBoundaryCents: 35,

		ClefSplit:      60,
		ClefHysteresis: 7,
		MelodyBias:     0.4,
	}
}

// SensitiveConfig trades false positives for quiet-note recall.
func SensitiveConfig() Config {
	cfg := DefaultConfig()
	cfg.Version = "v1-sensitive"
	cfg.Delta = 0.03
	cfg.SalienceThreshold = 0.05
	cfg.CandidateThreshold = 0.3
	return cfg
}

// LoadConfig reads a TOML preset on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("reading preset %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects malformed configuration before any audio is touched.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample_rate must be positive", ErrBadConfig)
	case c.PreEmphasis < 0 || c.PreEmphasis >= 1:
		return fmt.Errorf("%w: pre_emphasis must be in [0, 1)", ErrBadConfig)
	case c.FrameSize < 256:
		return fmt.Errorf("%w: frame_size too small", ErrBadConfig)
	case c.HopSize <= 0 || c.HopSize > c.FrameSize:
		return fmt.Errorf("%w: hop_size must be in (0, frame_size]", ErrBadConfig)
	case c.BandCount <= 0:
		return fmt.Errorf("%w: band_count must be positive", ErrBadConfig)
	case c.MinBPM <= 0 || c.MinBPM >= c.MaxBPM:
		return fmt.Errorf("%w: bpm range must be increasing", ErrBadConfig)
	case c.PreMax < 0 || c.PostMax < 0 || c.PreAvg < 0 || c.PostAvg < 0:
		return fmt.Errorf("%w: peak picking windows must be non-negative", ErrBadConfig)
	case c.Delta < 0:
		return fmt.Errorf("%w: delta must be non-negative", ErrBadConfig)
	case c.Wait < 1:
		return fmt.Errorf("%w: wait must be at least one frame", ErrBadConfig)
	case c.MinFrequency <= 0 || c.MinFrequency >= c.MaxFrequency:
		return fmt.Errorf("%w: frequency band must be increasing", ErrBadConfig)
	case c.SalienceThreshold < 0 || c.SalienceThreshold > 1:
		return fmt.Errorf("%w: salience_threshold must be in [0, 1]", ErrBadConfig)
	case c.CandidateThreshold < 0 || c.CandidateThreshold > 1:
		return fmt.Errorf("%w: candidate_threshold must be in [0, 1]", ErrBadConfig)
	case c.ForgivenessFactor < 1:
		return fmt.Errorf("%w: forgiveness_factor must be at least 1", ErrBadConfig)
	case c.Lookback < 0:
		return fmt.Errorf("%w: lookback must be non-negative", ErrBadConfig)
	case c.DedupSemitones < 0:
		return fmt.Errorf("%w: dedup_semitones must be non-negative", ErrBadConfig)
	case c.ToleranceCents <= 0 || c.ToleranceCents > 100:
		return fmt.Errorf("%w: tolerance_cents must be in (0, 100]", ErrBadConfig)
	case c.OctaveBoundaryCents <= 0 || c.OctaveBoundaryCents >= c.ToleranceCents:
		return fmt.Errorf("%w: octave_boundary_cents must be below tolerance_cents", ErrBadConfig)
	case c.ClefHysteresis < 0:
		return fmt.Errorf("%w: clef_hysteresis must be non-negative", ErrBadConfig)
	case c.MelodyBias < 0 || c.MelodyBias > 1:
		return fmt.Errorf("%w: melody_bias must be in [0, 1]", ErrBadConfig)
	case c.HarmonicSeparation && (c.HarmonicFilterFrames < 3 || c.PercussiveFilterBins < 3):
		return fmt.Errorf("%w: harmonic separation filters need at least 3 taps", ErrBadConfig)
	}
	return nil
}
