package pipeline

import (
	"errors"
	"fmt"

	"audio-transcriber/domain"
)

var (
	// ErrEmptyAudio is returned when the input decodes to no samples.
	ErrEmptyAudio = errors.New("audio input is empty")
	// ErrSilentInput is returned when no beat grid can be formed.
	ErrSilentInput = errors.New("input is silent, tempo is undefined")
	// ErrBadConfig is returned by Config.Validate for malformed tunings.
	ErrBadConfig = errors.New("invalid pipeline config")
)

// Stats counts the recoverable conditions a run skipped over. The pipeline
// keeps going past these; callers use the counts for observability.
type Stats struct {
	Onsets           int
	SkippedFrames    int
	NoSalienceFrames int
	DroppedNearDupes int
}

// Result is the full outcome of one transcription run.
type Result struct {
	Score domain.Score
	Tempo domain.TempoInfo
	Stats Stats
}

// Pipeline runs the signal-to-symbol transcription. It holds only the
// validated configuration and its strategy; every stage is a pure function
// of its input, so one Pipeline is safe to share across invocations.
type Pipeline struct {
	cfg      Config
	strategy PitchCandidateStrategy
}

// New validates cfg eagerly and builds a pipeline with the default
// single-peak-per-frame extraction strategy.
func New(cfg Config) (*Pipeline, error) {
	return NewWithStrategy(cfg, singlePeakStrategy{cfg: cfg})
}

// NewWithStrategy allows swapping the candidate extraction strategy, the
// extension point for a future polyphonic extractor.
func NewWithStrategy(cfg Config, strategy PitchCandidateStrategy) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg, strategy: strategy}, nil
}

// Config returns the pipeline's configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Transcribe loads the audio file at path and runs the full pipeline.
func (p *Pipeline) Transcribe(path string) (*Result, error) {
	buf, err := LoadAudio(path, p.cfg)
	if err != nil {
		return nil, err
	}
	return p.TranscribeBuffer(buf)
}

// TranscribeBuffer runs the pipeline over an already-loaded buffer. The
// buffer is expected to be mono at cfg.SampleRate; callers that bypass
// LoadAudio (tests, mostly) are responsible for that.
func (p *Pipeline) TranscribeBuffer(buf domain.AudioBuffer) (*Result, error) {
	if len(buf.Samples) == 0 {
		return nil, ErrEmptyAudio
	}

	pre := Preprocess(buf, p.cfg)

	grid := newSTFT(p.cfg.FrameSize, p.cfg.HopSize, p.cfg.SampleRate)
	spec := grid.Spectrogram(pre.Samples)

	envelope := onsetStrength(spec, p.cfg)

	tempo, err := EstimateTempo(envelope, p.cfg)
	if err != nil {
		return nil, err
	}

	onsets := DetectOnsets(envelope, p.cfg)
	if len(onsets) == 0 {
		return nil, fmt.Errorf("%w: no onsets above delta", ErrSilentInput)
	}

	pitchSpec := spec
	if p.cfg.HarmonicSeparation {
		pitchSpec = harmonicComponent(spec, p.cfg)
	}
	matrix := AnalyzeSalience(pitchSpec, p.cfg)

	var stats Stats
	stats.Onsets = len(onsets)

	var notes []domain.TranscribedNote
	for i, onset := range onsets {
		seconds := tempo.BeatLengthSeconds
		if i+1 < len(onsets) {
			seconds = onsets[i+1] - onset
		}
		quarters := QuantizeDuration(seconds, tempo.BeatLengthSeconds)

		candidates := ExtractCandidates(matrix, onset, p.strategy, p.cfg, &stats)
		for _, cand := range candidates {
			pitch := CorrectPitch(cand.FractionalMidiPitch, p.cfg)
			notes = append(notes, domain.TranscribedNote{
				MidiPitch:     pitch,
				QuarterLength: quarters,
				OnsetTime:     onset,
				Staff:         AssignClef(pitch, cand.Salience, p.cfg),
			})
		}
	}

	score := AssembleScore(notes)
	return &Result{Score: score, Tempo: tempo, Stats: stats}, nil
}
