package cmd

import (
	"path/filepath"

	"audio-transcriber/notation"
	"audio-transcriber/pipeline"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	transcribeOut  string
	transcribeMidi bool
	sensitive      bool
)

func init() {
	transcribeCmd.Flags().StringVar(&transcribeOut, "out", ".", "output directory")
	transcribeCmd.Flags().BoolVar(&transcribeMidi, "midi", false, "also export a standard MIDI file")
	transcribeCmd.Flags().BoolVar(&sensitive, "sensitive", false, "use the quiet-note preset")
	transcribeCmd.Flags().StringVar(&presetPath, "preset", "", "TOML pipeline preset (defaults to the built-in tuning)")
	rootCmd.AddCommand(transcribeCmd)
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio file>",
	Short: "Transcribes one audio file",
	Long:  `Transcribes one local audio file (wav, mp3 or ogg) and writes a MusicXML score next to it.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transcribe(args[0])
	},
}

func transcribe(path string) error {
	cfg, err := loadPreset()
	if err != nil {
		return err
	}
	if sensitive && presetPath == "" {
		cfg = pipeline.SensitiveConfig()
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	result, err := p.Transcribe(path)
	if err != nil {
		return err
	}

	id := uuid.New().String()
	outputPath := filepath.Join(transcribeOut, id+".musicxml")
	if err := notation.WriteMusicXMLFile(result.Score, outputPath); err != nil {
		return err
	}
	if transcribeMidi {
		if err := notation.WriteMIDIFile(result.Score, result.Tempo, filepath.Join(transcribeOut, id+".mid")); err != nil {
			return err
		}
	}

	log.Info().
		Str("input", path).
		Str("score", outputPath).
		Float64("bpm", result.Tempo.BeatsPerMinute).
		Int("treble_notes", len(result.Score.Treble)).
		Int("bass_notes", len(result.Score.Bass)).
		Int("skipped_frames", result.Stats.SkippedFrames+result.Stats.NoSalienceFrames).
		Msg("transcription complete")
	return nil
}
