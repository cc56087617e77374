package pipeline

import (
	"sort"

	"audio-transcriber/domain"
)

// AssembleScore splits the accepted notes into the two staves, orders each
// by onset time and attaches the fixed 4/4 time signature. No further
// transformation happens here; serialization belongs to the notation
// collaborators.
func AssembleScore(notes []domain.TranscribedNote) domain.Score {
	score := domain.Score{
		BeatsNumerator:   4,
		BeatsDenominator: 4,
	}
	for _, note := range notes {
		if note.Staff == domain.Treble {
			score.Treble = append(score.Treble, note)
		} else {
			score.Bass = append(score.Bass, note)
		}
	}
	byOnset := func(staff []domain.TranscribedNote) {
		sort.SliceStable(staff, func(i, j int) bool {
			return staff[i].OnsetTime < staff[j].OnsetTime
		})
	}
	byOnset(score.Treble)
	byOnset(score.Bass)
	return score
}
