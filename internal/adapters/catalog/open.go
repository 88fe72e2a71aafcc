package catalog

import (
	"context"
	"fmt"
	"io"
	"time"

	"dose-timeline/internal/adapters/catalog/mongodb"
	"dose-timeline/internal/adapters/catalog/static"
	"dose-timeline/internal/adapters/catalog/substanceapi"
	"dose-timeline/internal/platform/config"
	"dose-timeline/internal/platform/logger"
	port "dose-timeline/internal/ports/catalog"
)

const (
	DriverHTTP   = "http"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Open elige el adapter del catálogo según CATALOG_DRIVER.
func Open(ctx context.Context, cfg config.CatalogConfig, log logger.Logger) (port.Catalog, io.Closer, error) {
	if log == nil {
		log = logger.Nop()
	}

	switch cfg.Driver {
	case DriverHTTP, "":
		c, err := substanceapi.NewClient(ctx, substanceapi.Config{
			BaseURL:    cfg.BaseURL,
			Timeout:    cfg.Timeout,
			CacheTTL:   cfg.CacheTTL,
			CacheMaxMB: cfg.CacheMaxMB,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("catalog opened", map[string]any{"driver": DriverHTTP, "base_url": cfg.BaseURL})
		return c, c, nil

	case DriverMongo:
		c, err := mongodb.Open(ctx, cfg.MongoURL, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		log.Info("catalog opened", map[string]any{"driver": DriverMongo, "database": cfg.MongoDB})
		return c, mongoCloser{c}, nil

	case DriverMemory:
		if cfg.SeedFile == "" {
			log.Warn("memory catalog without seed file, catalog is empty", nil)
			return static.New(nil), nopCloser{}, nil
		}
		c, err := static.Load(cfg.SeedFile)
		if err != nil {
			return nil, nil, err
		}
		log.Info("catalog opened", map[string]any{"driver": DriverMemory, "seed": cfg.SeedFile})
		return c, nopCloser{}, nil
	}

	return nil, nil, fmt.Errorf("catalog: unknown driver %q", cfg.Driver)
}

type mongoCloser struct{ c *mongodb.Catalog }

func (m mongoCloser) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.c.Close(ctx)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
