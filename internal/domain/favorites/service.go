package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"dose-timeline/internal/domain/substances"
	"dose-timeline/internal/platform/logger"
	"dose-timeline/internal/ports/kv"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("favorite not found")
)

const Key = "preferences/favorites"

// Service guarda el set de sustancias favoritas. Nombres case-insensitive,
// se conserva la forma de la primera vez.
type Service struct {
	mu    sync.Mutex
	store kv.Store
	log   logger.Logger
	names []string

	observeWrite func(namespace string, err error)
}

func NewService(ctx context.Context, store kv.Store, log logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		store: store,
		log:   log.With(map[string]any{"component": "favorites"}),
		names: []string{},
	}

	raw, ok, err := store.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("favorites: load: %w", err)
	}
	if !ok {
		return s, nil
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		// preferencias corruptas no valen un respaldo: se arranca vacío
		s.log.Warn("favorites unreadable, starting empty", map[string]any{"error": err, "key": Key})
		return s, nil
	}
	for _, n := range names {
		if strings.TrimSpace(n) != "" && s.indexOf(n) < 0 {
			s.names = append(s.names, strings.TrimSpace(n))
		}
	}
	return s, nil
}

// SetWriteObserver conecta el contador de escrituras.
func (s *Service) SetWriteObserver(fn func(namespace string, err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observeWrite = fn
}

func (s *Service) indexOf(name string) int {
	for i, n := range s.names {
		if substances.SameName(n, name) {
			return i
		}
	}
	return -1
}

func (s *Service) persist(ctx context.Context, next []string) error {
	b, err := json.Marshal(next)
	if err != nil {
		return err
	}
	err = s.store.Set(ctx, Key, b)
	if s.observeWrite != nil {
		s.observeWrite("favorites", err)
	}
	if err != nil {
		s.log.Error("persist favorites failed", map[string]any{"error": err})
		return fmt.Errorf("favorites: persist: %w", err)
	}
	s.names = next
	return nil
}

// Add es idempotente: agregar un favorito existente no escribe.
func (s *Service) Add(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(name) >= 0 {
		return nil
	}
	next := append(append([]string{}, s.names...), name)
	return s.persist(ctx, next)
}

func (s *Service) Remove(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(name)
	if i < 0 {
		return ErrNotFound
	}
	next := make([]string, 0, len(s.names)-1)
	next = append(next, s.names[:i]...)
	next = append(next, s.names[i+1:]...)
	return s.persist(ctx, next)
}

func (s *Service) Contains(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(name) >= 0
}

// List devuelve los favoritos ordenados (case-insensitive).
func (s *Service) List() []string {
	s.mu.Lock()
	out := append([]string{}, s.names...)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return lessFold(out[i], out[j]) })
	return out
}

// Order pone los favoritos primero y ordena cada grupo alfabéticamente.
func (s *Service) Order(items []substances.Item) []substances.Item {
	s.mu.Lock()
	favs := make(map[string]bool, len(s.names))
	for _, n := range s.names {
		favs[strings.ToLower(n)] = true
	}
	s.mu.Unlock()

	out := append([]substances.Item{}, items...)
	sort.SliceStable(out, func(i, j int) bool {
		fi := favs[strings.ToLower(strings.TrimSpace(out[i].Name))]
		fj := favs[strings.ToLower(strings.TrimSpace(out[j].Name))]
		if fi != fj {
			return fi
		}
		return lessFold(out[i].Name, out[j].Name)
	})
	return out
}

func lessFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
