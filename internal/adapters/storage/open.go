package storage

import (
	"context"
	"fmt"
	"io"

	"dose-timeline/internal/adapters/storage/memory"
	pg "dose-timeline/internal/adapters/storage/postgres"
	s3store "dose-timeline/internal/adapters/storage/s3"
	"dose-timeline/internal/adapters/storage/sqlite"
	"dose-timeline/internal/platform/config"
	"dose-timeline/internal/platform/logger"
	"dose-timeline/internal/ports/kv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
	DriverMemory   = "memory"
)

// Open elige el driver del key-value según STORE_DRIVER.
// El io.Closer devuelto libera conexiones (no-op para memory/s3).
func Open(ctx context.Context, cfg config.StoreConfig, log logger.Logger) (kv.Store, io.Closer, error) {
	if log == nil {
		log = logger.Nop()
	}

	switch cfg.Driver {
	case DriverSQLite, "":
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("store opened", map[string]any{"driver": DriverSQLite, "path": s.Path()})
		return s, s, nil

	case DriverPostgres:
		if cfg.DSN == "" {
			return nil, nil, fmt.Errorf("storage: DB_DSN required for postgres driver")
		}
		db, err := pg.Open(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: open postgres: %w", err)
		}
		s := pg.NewKVStore(db)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info("store opened", map[string]any{"driver": DriverPostgres})
		return s, db, nil

	case DriverS3:
		s, err := s3store.New(ctx, s3store.Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			Prefix:          cfg.S3Prefix,
			PathStyle:       cfg.S3PathStyle,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info("store opened", map[string]any{"driver": DriverS3, "bucket": cfg.S3Bucket, "prefix": cfg.S3Prefix})
		return s, nopCloser{}, nil

	case DriverMemory:
		log.Warn("using in-memory store, data is lost on restart", nil)
		return memory.NewKVStore(), nopCloser{}, nil
	}

	return nil, nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
