// internal/store/open.go
package store

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/ip-licensing-portal/internal/config"
	"github.com/javajoker/ip-licensing-portal/internal/database"
)

// Open builds the backend selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	var (
		backend Backend
		err     error
	)

	switch cfg.Store.Driver {
	case "memory":
		backend = NewMemoryBackend()
	case "file":
		backend, err = NewFileBackend(cfg.Store.Directory)
	case "sqlite":
		backend, err = NewSQLiteBackend(ctx, cfg.Store.SQLiteDSN, cfg.Store.Table)
	case "postgres":
		db, dbErr := database.Initialize(cfg.Database)
		if dbErr != nil {
			return nil, dbErr
		}
		backend, err = NewPostgresBackend(db, cfg.Store.Table)
		if err != nil {
			database.Close(db)
		}
	case "redis":
		backend, err = NewRedisBackend(ctx, cfg.Redis)
	case "s3":
		backend, err = NewS3Backend(cfg.AWS, cfg.Store.S3Prefix)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}

	logrus.WithField("driver", cfg.Store.Driver).Info("Request store ready")
	return backend, nil
}
