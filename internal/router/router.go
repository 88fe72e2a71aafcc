package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "dose-timeline/docs"
	"dose-timeline/internal/domain/catalog"
	"dose-timeline/internal/domain/doselog"
	"dose-timeline/internal/domain/favorites"
	"dose-timeline/internal/domain/interactions"
	"dose-timeline/internal/domain/substances"
	"dose-timeline/internal/domain/timeline"
	"dose-timeline/internal/middleware"
	"dose-timeline/internal/platform/config"
	"dose-timeline/internal/platform/logger"
	"dose-timeline/internal/platform/metrics"
	port "dose-timeline/internal/ports/catalog"
	"dose-timeline/internal/ports/kv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Config  config.Config
	Logger  logger.Logger    // nil => Nop
	Metrics *metrics.Metrics // nil => se crea uno propio

	Store   kv.Store     // requerido
	Catalog port.Catalog // requerido

	// Now reemplaza el reloj en todos los módulos (tests). nil => time.Now.
	Now func() time.Time
}

// App agrupa los servicios ya cableados; el CLI los usa sin pasar por HTTP.
type App struct {
	Handler http.Handler

	Doses     *doselog.Service
	Favorites *favorites.Service
	Catalog   *catalog.Service
	Checker   *interactions.Checker
	Ticker    *timeline.Ticker
	Metrics   *metrics.Metrics
}

func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Store == nil {
		return nil, errors.New("router: store required")
	}
	if opts.Catalog == nil {
		return nil, errors.New("router: catalog required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	cfg := opts.Config

	// Services por módulo
	favSvc, err := favorites.NewService(ctx, opts.Store, log)
	if err != nil {
		return nil, fmt.Errorf("favorites: %w", err)
	}
	favSvc.SetWriteObserver(m.ObserveStoreWrite)

	catSvc := catalog.NewService(opts.Catalog, cfg.Catalog.Timeout, log).WithOrderer(favSvc)
	catSvc.Observe = m.ObserveCatalog

	doseSvc, err := doselog.NewService(ctx, opts.Store, log,
		doselog.WithClock(now),
		doselog.WithWriteObserver(m.ObserveStoreWrite),
		doselog.WithAddObserver(func(doselog.Entry) { m.ObserveDoseLogged() }),
	)
	if err != nil {
		return nil, fmt.Errorf("doselog: %w", err)
	}

	checker := interactions.NewChecker(catSvc, doseSvc, policyFrom(cfg), log).WithClock(now)
	checker.OnWarning = func(f interactions.Finding) { m.ObserveWarning(string(f.Severity)) }

	ticker := timeline.NewTicker(doseSvc, cfg.TickInterval, func(v timeline.View) {
		m.SetActiveDoses(len(v.Active))
	}).WithClock(now)

	// recalcular al toque cuando cambia el log, sin esperar el próximo tick
	doseSvc.OnChange(func() { ticker.Tick(context.Background()) })

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log))
	r.Use(middleware.Recover(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Rutas por módulo
	catalog.RegisterRoutes(r, catSvc)
	favorites.RegisterRoutes(r, favSvc)
	doselog.RegisterRoutes(r, doseSvc, doselog.HandlerDeps{
		Lookup: func(ctx context.Context, name string) (substances.Substance, error) {
			return catSvc.GetDetail(ctx, name)
		},
		Advise: func(ctx context.Context, name string) any {
			if f, ok := checker.Check(ctx, name); ok {
				return f
			}
			return nil
		},
	})
	timeline.RegisterRoutes(r, doseSvc, now)
	interactions.RegisterRoutes(r, checker)

	return &App{
		Handler:   r,
		Doses:     doseSvc,
		Favorites: favSvc,
		Catalog:   catSvc,
		Checker:   checker,
		Ticker:    ticker,
		Metrics:   m,
	}, nil
}

func policyFrom(cfg config.Config) interactions.Policy {
	p := interactions.DefaultPolicy()
	if cfg.InteractionThreshold != "" {
		p.Threshold = substances.ParseSeverity(cfg.InteractionThreshold)
	}
	p.Bidirectional = cfg.InteractionBidirectional
	return p
}
