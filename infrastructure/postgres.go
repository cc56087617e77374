package infrastructure

import (
	"context"
	"fmt"
	"os"
	"time"

	"audio-transcriber/domain"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect initializes the DB connection based on the current environment.
func Connect(ctx context.Context) (db *gorm.DB, err error) {
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context is done, giving up on db connection")
		default:
			db, err = gorm.Open(gormpostgres.Open(os.Getenv("DB_CONNECTION_STRING")), &gorm.Config{})
			if err == nil {
				return
			}
			log.Warn().Err(err).Msg("could not connect to DB")
		}
		time.Sleep(1 * time.Second)
	}
}

// CreateTables migrates the transcription job log.
func CreateTables(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Transcription{})
}
