package notation

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"audio-transcriber/domain"
)

const ticksPerQuarter = 480

type noteEvent struct {
	tick  uint32
	off   bool
	key   uint8
	vel   uint8
	track int
}

// WriteMIDIFile exports the score as a standard MIDI file with one track
// per staff, using the estimated tempo for the beat grid.
func WriteMIDIFile(score domain.Score, tempo domain.TempoInfo, path string) error {
	events := staffEvents(score.Treble, 0, tempo)
	events = append(events, staffEvents(score.Bass, 1, tempo)...)

	// note-offs sort before note-ons at the same tick so re-struck
	// pitches do not cancel themselves
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].off && !events[j].off
	})

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	for trackNum := 0; trackNum < 2; trackNum++ {
		var track smf.Track
		if trackNum == 0 {
			track.Add(0, smf.MetaTempo(tempo.BeatsPerMinute))
			track.Add(0, smf.MetaMeter(uint8(score.BeatsNumerator), uint8(score.BeatsDenominator)))
		}
		last := uint32(0)
		for _, ev := range events {
			if ev.track != trackNum {
				continue
			}
			delta := ev.tick - last
			last = ev.tick
			if ev.off {
				track.Add(delta, midi.NoteOff(uint8(trackNum), ev.key))
			} else {
				track.Add(delta, midi.NoteOn(uint8(trackNum), ev.key, ev.vel))
			}
		}
		track.Close(0)
		s.Add(track)
	}

	if err := s.WriteFile(path); err != nil {
		return fmt.Errorf("writing midi file: %w", err)
	}
	return nil
}

func staffEvents(notes []domain.TranscribedNote, track int, tempo domain.TempoInfo) []noteEvent {
	var events []noteEvent
	for _, note := range notes {
		beats := note.OnsetTime / tempo.BeatLengthSeconds
		on := uint32(beats * ticksPerQuarter)
		off := on + uint32(note.QuarterLength*ticksPerQuarter)
		key := uint8(note.MidiPitch)
		events = append(events,
			noteEvent{tick: on, key: key, vel: 96, track: track},
			noteEvent{tick: off, off: true, key: key, track: track},
		)
	}
	return events
}
