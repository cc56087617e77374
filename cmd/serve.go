package cmd

import (
	"context"
	"net/http"

	"audio-transcriber/api"
	"audio-transcriber/pipeline"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&presetPath, "preset", "", "TOML pipeline preset (defaults to the built-in tuning)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the transcription service",
	Long:  `Runs the HTTP upload service that transcribes audio files into scores.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	cfg, err := loadPreset()
	if err != nil {
		return err
	}

	server, err := api.Init(cfg)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    serveAddr,
		Handler: cors.Default().Handler(server),
	}

	ctx, cancel := context.WithCancel(context.Background())
	server.HandleShutdownSignals(cancel)

	serverDone := make(chan error, 1)
	go func() {
		log.Info().Str("addr", serveAddr).Msg("listening")
		serverDone <- httpServer.ListenAndServe()
	}()

	server.AwaitForShutdown(ctx, httpServer, serverDone, cancel)
	return nil
}

var presetPath string

func loadPreset() (pipeline.Config, error) {
	if presetPath == "" {
		return pipeline.DefaultConfig(), nil
	}
	return pipeline.LoadConfig(presetPath)
}
