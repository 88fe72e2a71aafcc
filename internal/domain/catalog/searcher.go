package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"dose-timeline/internal/domain/substances"
)

const (
	DefaultDebounce = 400 * time.Millisecond
	MinQueryLength  = 2
)

// Result es lo que recibe el callback del Searcher.
type Result struct {
	Query string
	Items []substances.Item
	Err   error
}

// Searcher implementa búsqueda incremental: cada Submit reinicia la ventana
// de silencio; al vencer cancela la búsqueda en curso y lanza otra.
// Solo se entrega el resultado de la última consulta emitida.
//
// El callback corre con el lock tomado: no debe llamar a Submit ni a Stop.
type Searcher struct {
	search   func(ctx context.Context, text string) ([]substances.Item, error)
	debounce time.Duration
	minLen   int
	deliver  func(Result)

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
	gen    uint64
	closed bool
}

func NewSearcher(svc *Service, debounce time.Duration, deliver func(Result)) *Searcher {
	return newSearcher(svc.Search, debounce, deliver)
}

func newSearcher(search func(context.Context, string) ([]substances.Item, error), debounce time.Duration, deliver func(Result)) *Searcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Searcher{
		search:   search,
		debounce: debounce,
		minLen:   MinQueryLength,
		deliver:  deliver,
	}
}

// Submit registra una nueva consulta. Consultas de menos de 2 caracteres
// limpian los resultados sin ir al catálogo.
func (s *Searcher) Submit(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	text = strings.TrimSpace(text)
	if len([]rune(text)) < s.minLen {
		s.timer = nil
		s.deliver(Result{Query: text, Items: []substances.Item{}})
		return
	}

	s.timer = time.AfterFunc(s.debounce, func() { s.fire(gen, text) })
}

func (s *Searcher) fire(gen uint64, text string) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	items, err := s.search(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	cancel()
	if s.closed || gen != s.gen {
		// llegó tarde: hay una consulta más nueva
		return
	}
	s.cancel = nil
	s.deliver(Result{Query: text, Items: items, Err: err})
}

// Stop cancela el timer y cualquier búsqueda en curso. No entrega más resultados.
func (s *Searcher) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
}
