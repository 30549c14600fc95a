package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/services"
	"github.com/desertthunder/songbook/internal/shared"
)

// Open returns the repository for the backend selected in cfg.
//
// The local backend opens the SQLite database and applies pending migrations.
// The remote backend talks to the document store through a [services.DocumentService].
func Open(ctx context.Context, cfg *shared.Config, logger *log.Logger) (models.SongRepository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch strings.ToLower(cfg.Storage.Backend) {
	case shared.BackendRemote:
		svc, err := services.NewDocumentService(cfg.Remote, nil)
		if err != nil {
			return nil, err
		}
		logger.Debug("using remote document store", "url", cfg.Remote.URL, "user", cfg.Remote.Username)
		return NewDocumentRepository(svc), nil
	default:
		db, err := shared.NewDatabase(cfg.Database.Driver, cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		shared.ConfigureDatabase(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)

		applied, err := shared.RunMigrations(ctx, db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		if applied > 0 {
			logger.Info("applied migrations", "count", applied)
		}
		logger.Debug("using local database", "driver", cfg.Database.Driver, "path", cfg.Database.Path)
		return NewSongRepository(db), nil
	}
}
