package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresetsAreValid(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(DefaultConfig().Validate())
	assert.NoError(SensitiveConfig().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	breakers := map[string]func(*Config){
		"zero sample rate":          func(c *Config) { c.SampleRate = 0 },
		"pre-emphasis out of range": func(c *Config) { c.PreEmphasis = 1.0 },
		"hop larger than frame":     func(c *Config) { c.HopSize = c.FrameSize * 2 },
		"inverted bpm range":        func(c *Config) { c.MinBPM, c.MaxBPM = 200, 40 },
		"negative delta":            func(c *Config) { c.Delta = -0.1 },
		"zero wait":                 func(c *Config) { c.Wait = 0 },
		"inverted frequency band":   func(c *Config) { c.MinFrequency = c.MaxFrequency },
		"forgiveness below one":     func(c *Config) { c.ForgivenessFactor = 0.8 },
		"boundary above tolerance":  func(c *Config) { c.OctaveBoundaryCents = c.ToleranceCents + 1 },
		"melody bias above one":     func(c *Config) { c.MelodyBias = 1.5 },
		"degenerate hpss filters":   func(c *Config) { c.HarmonicFilterFrames = 1 },
	}

	for name, breaker := range breakers {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			breaker(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrBadConfig)
		})
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "preset.toml")
	body := "version = \"custom\"\ndelta = 0.12\nclef_split = 62\n"
	assert.NoError(os.WriteFile(path, []byte(body), 0644))

	cfg, err := LoadConfig(path)
	assert.NoError(err)
	assert.Equal("custom", cfg.Version)
	assert.Equal(0.12, cfg.Delta)
	assert.Equal(62, cfg.ClefSplit)
	// untouched fields keep their defaults
	assert.Equal(44100, cfg.SampleRate)
}

func TestLoadConfigRejectsInvalidPreset(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "preset.toml")
	assert.NoError(os.WriteFile(path, []byte("wait = 0\n"), 0644))

	_, err := LoadConfig(path)
	assert.ErrorIs(err, ErrBadConfig)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
