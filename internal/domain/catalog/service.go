package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dose-timeline/internal/domain/substances"
	"dose-timeline/internal/platform/logger"
	port "dose-timeline/internal/ports/catalog"
)

var (
	// ErrUnavailable: el catálogo no respondió (caído, timeout). El caller recibe resultado vacío.
	ErrUnavailable = errors.New("catalog unavailable")
	ErrNotFound    = port.ErrNotFound
)

const DefaultTimeout = 5 * time.Second

// Orderer reordena resultados (favoritos primero).
type Orderer interface {
	Order(items []substances.Item) []substances.Item
}

// Service envuelve el puerto con timeout por llamada y degradación:
// nunca propaga una falla del catálogo como error fatal.
type Service struct {
	port    port.Catalog
	timeout time.Duration
	log     logger.Logger
	orderer Orderer

	// Observe recibe cada llamada al puerto (metrics).
	Observe func(op string, err error)
}

func NewService(p port.Catalog, timeout time.Duration, log logger.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		port:    p,
		timeout: timeout,
		log:     log.With(map[string]any{"component": "catalog"}),
	}
}

// WithOrderer conecta el orden por favoritos a Browse.
func (s *Service) WithOrderer(o Orderer) *Service {
	s.orderer = o
	return s
}

func (s *Service) observe(op string, err error) {
	if s.Observe != nil {
		s.Observe(op, err)
	}
}

func (s *Service) degrade(op string, err error) error {
	s.log.Warn("catalog request failed", map[string]any{"op": op, "error": err})
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

// Search busca por prefijo/subcadena. Texto vacío => sin resultados.
func (s *Service) Search(ctx context.Context, text string) ([]substances.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []substances.Item{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, err := s.port.SearchByPrefix(ctx, text)
	s.observe("search", err)
	if err != nil {
		return []substances.Item{}, s.degrade("search", err)
	}
	if items == nil {
		items = []substances.Item{}
	}
	return items, nil
}

func (s *Service) ListAll(ctx context.Context) ([]substances.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, err := s.port.ListAll(ctx)
	s.observe("list", err)
	if err != nil {
		return []substances.Item{}, s.degrade("list", err)
	}
	if items == nil {
		items = []substances.Item{}
	}
	return items, nil
}

// Browse es la pantalla de wiki: sin texto lista todo, con texto busca.
// Si hay Orderer los favoritos van primero.
func (s *Service) Browse(ctx context.Context, text string) ([]substances.Item, error) {
	var (
		items []substances.Item
		err   error
	)
	if strings.TrimSpace(text) == "" {
		items, err = s.ListAll(ctx)
	} else {
		items, err = s.Search(ctx, text)
	}
	if s.orderer != nil {
		items = s.orderer.Order(items)
	}
	return items, err
}

// GetDetail devuelve el registro completo. ErrNotFound si el catálogo no lo conoce,
// ErrUnavailable si no respondió.
func (s *Service) GetDetail(ctx context.Context, name string) (substances.Substance, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return substances.Substance{}, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sub, err := s.port.GetDetail(ctx, name)
	if errors.Is(err, port.ErrNotFound) {
		s.observe("detail", nil)
		return substances.Substance{}, ErrNotFound
	}
	s.observe("detail", err)
	if err != nil {
		return substances.Substance{}, s.degrade("detail", err)
	}
	return sub, nil
}
