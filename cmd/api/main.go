package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogadapter "dose-timeline/internal/adapters/catalog"
	"dose-timeline/internal/adapters/storage"
	"dose-timeline/internal/platform/config"
	"dose-timeline/internal/platform/logger"
	"dose-timeline/internal/router"
)

// @title Dose Timeline API
// @version 1.0
// @description Registro de dosis, timeline de efectos activos y advertencias de interacción.
// @BasePath /
func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server error", map[string]any{"error": err})
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log logger.Logger) error {
	store, storeCloser, err := storage.Open(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	defer storeCloser.Close()

	cat, catCloser, err := catalogadapter.Open(ctx, cfg.Catalog, log)
	if err != nil {
		return err
	}
	defer catCloser.Close()

	app, err := router.New(ctx, router.Options{
		Config:  cfg,
		Logger:  log,
		Store:   store,
		Catalog: cat,
	})
	if err != nil {
		return err
	}

	go app.Ticker.Run(ctx)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      app.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.Addr()})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
