// Package notation serializes an assembled score; it never alters one.
package notation

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"audio-transcriber/domain"
)

// divisions per quarter note in the MusicXML output.
const divisions = 480

const doctype = `<!DOCTYPE score-partwise PUBLIC "-//Recordare//DTD MusicXML 3.1 Partwise//EN" "http://www.musicxml.org/dtds/partwise.dtd">` + "\n"

type scorePartwise struct {
	XMLName  xml.Name    `xml:"score-partwise"`
	Version  string      `xml:"version,attr"`
	PartList []scorePart `xml:"part-list>score-part"`
	Parts    []part      `xml:"part"`
}

type scorePart struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"part-name"`
}

type part struct {
	ID       string    `xml:"id,attr"`
	Measures []measure `xml:"measure"`
}

type measure struct {
	Number     int         `xml:"number,attr"`
	Attributes *attributes `xml:"attributes,omitempty"`
	Notes      []xmlNote   `xml:"note"`
}

type attributes struct {
	Divisions int     `xml:"divisions"`
	Time      timeSig `xml:"time"`
	Clef      clefSig `xml:"clef"`
}

type timeSig struct {
	Beats    int `xml:"beats"`
	BeatType int `xml:"beat-type"`
}

type clefSig struct {
	Sign string `xml:"sign"`
	Line int    `xml:"line"`
}

type xmlNote struct {
	Pitch    xmlPitch  `xml:"pitch"`
	Duration int       `xml:"duration"`
	Type     string    `xml:"type,omitempty"`
	Dot      *struct{} `xml:"dot,omitempty"`
}

type xmlPitch struct {
	Step   string `xml:"step"`
	Alter  int    `xml:"alter,omitempty"`
	Octave int    `xml:"octave"`
}

var steps = [12]struct {
	step  string
	alter int
}{
	{"C", 0}, {"C", 1}, {"D", 0}, {"D", 1}, {"E", 0}, {"F", 0},
	{"F", 1}, {"G", 0}, {"G", 1}, {"A", 0}, {"A", 1}, {"B", 0},
}

var noteTypes = map[float64]struct {
	name   string
	dotted bool
}{
	4:     {"whole", false},
	2:     {"half", false},
	1.5:   {"quarter", true},
	1:     {"quarter", false},
	0.75:  {"eighth", true},
	0.5:   {"eighth", false},
	0.25:  {"16th", false},
	0.125: {"32nd", false},
}

// WriteMusicXML renders the two-staff score as a score-partwise document.
func WriteMusicXML(score domain.Score, w io.Writer) error {
	doc := scorePartwise{
		Version: "3.1",
		PartList: []scorePart{
			{ID: "P1", Name: "Treble"},
			{ID: "P2", Name: "Bass"},
		},
		Parts: []part{
			buildPart("P1", score.Treble, clefSig{Sign: "G", Line: 2}, score),
			buildPart("P2", score.Bass, clefSig{Sign: "F", Line: 4}, score),
		},
	}

	if _, err := io.WriteString(w, xml.Header+doctype); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding musicxml: %w", err)
	}
	return enc.Flush()
}

// WriteMusicXMLFile is WriteMusicXML to a file path.
func WriteMusicXMLFile(score domain.Score, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating score file: %w", err)
	}
	defer f.Close()
	return WriteMusicXML(score, f)
}

// buildPart packs a staff's notes into 4/4 measures in onset order. The
// first measure carries the staff attributes.
func buildPart(id string, notes []domain.TranscribedNote, clef clefSig, score domain.Score) part {
	beatsPerMeasure := float64(score.BeatsNumerator)

	current := measure{
		Number: 1,
		Attributes: &attributes{
			Divisions: divisions,
			Time:      timeSig{Beats: score.BeatsNumerator, BeatType: score.BeatsDenominator},
			Clef:      clef,
		},
	}
	var measures []measure
	filled := 0.0
	for _, note := range notes {
		if filled >= beatsPerMeasure {
			measures = append(measures, current)
			current = measure{Number: len(measures) + 1}
			filled = 0
		}
		current.Notes = append(current.Notes, toXMLNote(note))
		filled += note.QuarterLength
	}
	measures = append(measures, current)
	return part{ID: id, Measures: measures}
}

func toXMLNote(note domain.TranscribedNote) xmlNote {
	s := steps[((note.MidiPitch%12)+12)%12]
	out := xmlNote{
		Pitch: xmlPitch{
			Step:   s.step,
			Alter:  s.alter,
			Octave: note.MidiPitch/12 - 1,
		},
		Duration: int(note.QuarterLength * divisions),
	}
	if t, ok := noteTypes[note.QuarterLength]; ok {
		out.Type = t.name
		if t.dotted {
			out.Dot = &struct{}{}
		}
	}
	return out
}
