package domain

// Staff identifies which of the two staves a note is engraved on.
type Staff int

const (
	Treble Staff = iota
	Bass
)

func (s Staff) String() string {
	if s == Bass {
		return "bass"
	}
	return "treble"
}

// AudioBuffer holds mono samples at a fixed rate. It is immutable once
// loaded; stages that filter it return a fresh buffer.
type AudioBuffer struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the buffer length in seconds.
func (b AudioBuffer) Duration() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// TempoInfo is computed once per run and read-only thereafter.
type TempoInfo struct {
	BeatsPerMinute    float64
	BeatLengthSeconds float64
}

// NoteCandidate is a raw per-frame pitch estimate, before correction.
type NoteCandidate struct {
	FractionalMidiPitch float64
	Salience            float64
	FrameIndex          int
}

// TranscribedNote is a single accepted note. QuarterLength is in
// quarter-note units and never below 0.125.
type TranscribedNote struct {
	MidiPitch     int
	QuarterLength float64
	OnsetTime     float64
	Staff         Staff
}

// Score is the assembled two-staff result handed to the serializers.
// Notes within each staff are ordered by onset time, non-decreasing.
type Score struct {
	Treble           []TranscribedNote
	Bass             []TranscribedNote
	BeatsNumerator   int
	BeatsDenominator int
}

// NoteCount returns the total number of notes across both staves.
func (s Score) NoteCount() int {
	return len(s.Treble) + len(s.Bass)
}
