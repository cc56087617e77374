package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"audio-transcriber/infrastructure"
	"audio-transcriber/pipeline"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Server struct {
	Db        *gorm.DB
	Router    httprouter.Router
	Pipeline  *pipeline.Pipeline
	UploadDir string
	OutputDir string
	Bucket    string
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h, p, _ := s.Router.Lookup(r.Method, r.URL.Path)
	if h != nil {
		h(w, r, p)
		return
	}
	s.Response(w, r, Error{Code: 404, Message: "Path not found.", Function: "ServeHTTP", Input: r.URL.Path}, 404)
}

type Error struct {
	Code     int
	Message  string
	Function string
	Input    string
}

// Init wires the database, the transcription pipeline and the routes.
func Init(cfg pipeline.Config) (*Server, error) {
	db, err := infrastructure.Connect(context.TODO())
	if err != nil {
		return nil, err
	}
	if err := infrastructure.CreateTables(db); err != nil {
		return nil, err
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return nil, err
	}

	server := &Server{
		Db:        db,
		Pipeline:  p,
		UploadDir: envOr("UPLOAD_DIR", "uploads"),
		OutputDir: envOr("OUTPUT_DIR", "scores"),
		Bucket:    os.Getenv("STORAGE_BUCKET"),
	}
	for _, dir := range []string{server.UploadDir, server.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	server.Router = *server.Routes()
	return server, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (s *Server) Error(code int, message string, function string, input interface{}) Error {
	inputJSON, _ := json.MarshalIndent(input, "", "    ")
	return Error{
		Code:     code,
		Message:  message,
		Function: function,
		Input:    string(inputJSON),
	}
}

func (s *Server) Decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) Response(w http.ResponseWriter, r *http.Request, i interface{}, code int) {
	w.WriteHeader(code)
	if i != nil {
		err := json.NewEncoder(w).Encode(i)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Couldn't encode response data."))
		}
	}
}

func (s *Server) AwaitForShutdown(ctx context.Context, server *http.Server, serverDone chan error, shutdownApplication context.CancelFunc) {
	select {
	case <-ctx.Done():
		s.ShutdownServerGracefully(server)
	case serverError := <-serverDone:
		if serverError != nil {
			log.Error().Err(serverError).Msg("Server returned with error")
		}
		shutdownApplication()
	}
}

func (s *Server) ShutdownServerGracefully(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Could not shutdown server gracefully")
	}
}

func (s *Server) HandleShutdownSignals(cancel context.CancelFunc) {
	done := make(chan struct{})
	go func() {
		log.Info().Msg("Listening signals...")
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		close(done)
	}()
	go func() {
		<-done
		log.Info().Msg("Shutting down")
		cancel()
	}()
}
