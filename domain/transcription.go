package domain

import "time"

// Transcription is the persisted record of one pipeline run. The ID doubles
// as the unique output artifact name so concurrent requests never collide on
// a shared path.
type Transcription struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time

	Filename       string
	BeatsPerMinute float64
	TrebleNotes    int
	BassNotes      int
	SkippedFrames  int
	OutputPath     string
}
