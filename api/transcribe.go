package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"audio-transcriber/domain"
	"audio-transcriber/notation"
	"audio-transcriber/pipeline"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
)

// maxUploadBytes caps uploads at 16MB, matching the accepted input
// contract; anything larger is rejected before the pipeline runs.
const maxUploadBytes = 16 << 20

var allowedExtensions = map[string]bool{
	".mp3": true,
	".wav": true,
	".ogg": true,
}

func (s *Server) HandleTranscribeRequest() httprouter.Handle {
	type Output struct {
		ID             string
		BeatsPerMinute float64
		TrebleNotes    int
		BassNotes      int
		SkippedFrames  int
		ScoreURL       string
	}

	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			s.Response(
				w, r,
				s.Error(http.StatusRequestEntityTooLarge, err.Error(), "HandleTranscribeRequest", r.ContentLength),
				http.StatusRequestEntityTooLarge,
			)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			s.Response(
				w, r,
				s.Error(http.StatusBadRequest, "No file uploaded.", "HandleTranscribeRequest", err.Error()),
				http.StatusBadRequest,
			)
			return
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !allowedExtensions[ext] {
			s.Response(
				w, r,
				s.Error(http.StatusBadRequest, "Unsupported file type.", "HandleTranscribeRequest", header.Filename),
				http.StatusBadRequest,
			)
			return
		}

		// per-request identifier; uploads and outputs never share a
		// path across concurrent requests
		id := uuid.New().String()

		uploadPath := filepath.Join(s.UploadDir, id+ext)
		if err := saveUpload(file, uploadPath); err != nil {
			s.Response(
				w, r,
				s.Error(http.StatusInternalServerError, err.Error(), "HandleTranscribeRequest", header.Filename),
				http.StatusInternalServerError,
			)
			return
		}
		defer os.Remove(uploadPath)

		result, err := s.Pipeline.Transcribe(uploadPath)
		if err != nil {
			code := http.StatusInternalServerError
			if errors.Is(err, pipeline.ErrSilentInput) || errors.Is(err, pipeline.ErrEmptyAudio) {
				code = http.StatusUnprocessableEntity
			}
			s.Response(
				w, r,
				s.Error(code, err.Error(), "HandleTranscribeRequest", header.Filename),
				code,
			)
			return
		}

		outputPath := filepath.Join(s.OutputDir, id+".musicxml")
		if err := notation.WriteMusicXMLFile(result.Score, outputPath); err != nil {
			s.Response(
				w, r,
				s.Error(http.StatusInternalServerError, err.Error(), "HandleTranscribeRequest", header.Filename),
				http.StatusInternalServerError,
			)
			return
		}
		midiPath := filepath.Join(s.OutputDir, id+".mid")
		if err := notation.WriteMIDIFile(result.Score, result.Tempo, midiPath); err != nil {
			log.Error().Err(err).Str("id", id).Msg("could not export midi")
		}

		record := domain.Transcription{
			ID:             id,
			Filename:       header.Filename,
			BeatsPerMinute: result.Tempo.BeatsPerMinute,
			TrebleNotes:    len(result.Score.Treble),
			BassNotes:      len(result.Score.Bass),
			SkippedFrames:  result.Stats.SkippedFrames + result.Stats.NoSalienceFrames,
			OutputPath:     outputPath,
		}
		if db := s.Db.Create(&record); db.Error != nil {
			log.Error().Err(db.Error).Str("id", id).Msg("could not persist transcription record")
		}

		if s.Bucket != "" {
			if err := s.ArchiveScore(r.Context(), outputPath); err != nil {
				log.Error().Err(err).Str("id", id).Msg("could not archive score")
			}
		}

		log.Info().
			Str("id", id).
			Str("filename", header.Filename).
			Float64("bpm", result.Tempo.BeatsPerMinute).
			Int("notes", result.Score.NoteCount()).
			Int("skipped_frames", record.SkippedFrames).
			Msg("transcription complete")

		s.Response(w, r, Output{
			ID:             id,
			BeatsPerMinute: result.Tempo.BeatsPerMinute,
			TrebleNotes:    len(result.Score.Treble),
			BassNotes:      len(result.Score.Bass),
			SkippedFrames:  record.SkippedFrames,
			ScoreURL:       fmt.Sprintf("/scores/%s", id),
		}, http.StatusOK)
	}
}

func saveUpload(src io.Reader, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saving upload: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("saving upload: %w", err)
	}
	return nil
}

func (s *Server) HandleScoreDownload() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		id := p.ByName("id")
		if _, err := uuid.Parse(id); err != nil {
			s.Response(
				w, r,
				s.Error(http.StatusBadRequest, "Malformed score id.", "HandleScoreDownload", id),
				http.StatusBadRequest,
			)
			return
		}

		record := domain.Transcription{}
		if db := s.Db.First(&record, "id = ?", id); db.Error != nil {
			s.Response(
				w, r,
				s.Error(http.StatusNotFound, "Score not found.", "HandleScoreDownload", id),
				http.StatusNotFound,
			)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.recordare.musicxml+xml")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.musicxml", id))
		http.ServeFile(w, r, record.OutputPath)
	}
}
