package pipeline

import (
	"math"
	"sort"

	"audio-transcriber/domain"
)

// PitchCandidateStrategy selects the pitch candidates of one analysis
// frame. The shipped strategy is monophonic-per-frame; a polyphonic
// extractor would implement this same interface and return several
// candidates without touching the rest of the pipeline.
type PitchCandidateStrategy interface {
	FrameCandidates(freqs, sals []float64, frame int) []domain.NoteCandidate
}

// singlePeakStrategy keeps at most one pitch per frame: the single
// highest-salience qualifying peak.
type singlePeakStrategy struct {
	cfg Config
}

func (s singlePeakStrategy) FrameCandidates(freqs, sals []float64, frame int) []domain.NoteCandidate {
	frameMax := 0.0
	for _, v := range sals {
		if v > frameMax {
			frameMax = v
		}
	}
	if frameMax == 0 {
		return nil
	}

	bestBin := -1
	bestSal := 0.0
	for b, sal := range sals {
		norm := sal / frameMax
		if norm <= s.cfg.CandidateThreshold || freqs[b] <= 0 {
			continue
		}
		// a neighbor may outweigh this bin a little and still forgive it,
		// but a decisively stronger neighbor means this bin is a sidelobe
		if b > 0 && sals[b-1] > sal*s.cfg.ForgivenessFactor {
			continue
		}
		if b+1 < len(sals) && sals[b+1] > sal*s.cfg.ForgivenessFactor {
			continue
		}
		if sal > bestSal {
			bestSal = sal
			bestBin = b
		}
	}
	if bestBin < 0 {
		return nil
	}
	return []domain.NoteCandidate{{
		FractionalMidiPitch: hzToMidi(freqs[bestBin]),
		Salience:            bestSal,
		FrameIndex:          frame,
	}}
}

func hzToMidi(hz float64) float64 {
	return 69 + 12*math.Log2(hz/440)
}

// ExtractCandidates gathers the distinct pitch candidates around one
// onset. The onset's own frame plus a small trailing window are inspected
// to tolerate misalignment between the onset grid and the pitch grid;
// candidates within DedupSemitones of the previously accepted one are
// near-identical detections, not genuine intervals, and are dropped.
func ExtractCandidates(matrix *salienceMatrix, onset float64, strategy PitchCandidateStrategy, cfg Config, stats *Stats) []domain.NoteCandidate {
	frame := matrix.frameForTime(onset)

	distinct := make(map[float64]domain.NoteCandidate)
	for f := frame - cfg.Lookback; f <= frame; f++ {
		if f < 0 || f >= matrix.frames() {
			stats.SkippedFrames++
			continue
		}
		found := strategy.FrameCandidates(matrix.freqs[f], matrix.sals[f], f)
		if len(found) == 0 {
			stats.NoSalienceFrames++
			continue
		}
		for _, cand := range found {
			if prev, ok := distinct[cand.FractionalMidiPitch]; !ok || cand.Salience > prev.Salience {
				distinct[cand.FractionalMidiPitch] = cand
			}
		}
	}
	if len(distinct) == 0 {
		return nil
	}

	candidates := make([]domain.NoteCandidate, 0, len(distinct))
	for _, cand := range distinct {
		candidates = append(candidates, cand)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].FractionalMidiPitch < candidates[j].FractionalMidiPitch
	})

	accepted := make([]domain.NoteCandidate, 0, len(candidates))
	accepted = append(accepted, candidates[0])
	for _, cand := range candidates[1:] {
		last := accepted[len(accepted)-1]
		if cand.FractionalMidiPitch-last.FractionalMidiPitch <= cfg.DedupSemitones {
			stats.DroppedNearDupes++
			continue
		}
		accepted = append(accepted, cand)
	}
	return accepted
}
