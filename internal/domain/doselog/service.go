package doselog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"dose-timeline/internal/platform/logger"
	"dose-timeline/internal/ports/kv"

	"github.com/google/uuid"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("dose log entry not found")
	ErrStorageCorruption = errors.New("stored dose log is corrupt")
)

const (
	EntriesKey = "doselog/entries"
	corruptKey = EntriesKey + ".corrupt"
)

// Service es el dueño de la colección de dosis. Todas las operaciones se
// serializan con mu; cada mutación persiste la colección completa antes de volver.
type Service struct {
	mu      sync.Mutex
	store   kv.Store
	log     logger.Logger
	entries []Entry

	now   func() time.Time
	newID func() string

	onChange     []func()
	observeWrite func(namespace string, err error)
	observeAdd   func(Entry)
}

type Option func(*Service)

// WithAddObserver corre después de cada Add confirmado (contador de dosis).
func WithAddObserver(fn func(Entry)) Option {
	return func(s *Service) { s.observeAdd = fn }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithWriteObserver recibe el resultado de cada Set (lo usa metrics).
func WithWriteObserver(fn func(namespace string, err error)) Option {
	return func(s *Service) { s.observeWrite = fn }
}

// NewService carga la colección persistida. Solo devuelve error si el store
// no responde; datos corruptos se respaldan y se arranca vacío.
func NewService(ctx context.Context, store kv.Store, log logger.Logger, opts ...Option) (*Service, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		store: store,
		log:   log.With(map[string]any{"component": "doselog"}),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	raw, ok, err := store.Get(ctx, EntriesKey)
	if err != nil {
		return nil, fmt.Errorf("doselog: load %s: %w", EntriesKey, err)
	}
	if !ok || len(strings.TrimSpace(string(raw))) == 0 {
		s.entries = []Entry{}
		return s, nil
	}

	entries, err := decodeStored(raw)
	if err != nil {
		s.recoverCorrupt(ctx, raw, err)
		s.entries = []Entry{}
		return s, nil
	}
	s.entries = entries
	return s, nil
}

func decodeStored(raw []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		e.SubstanceSnapshot.normalizeStatuses()
		if strings.TrimSpace(e.ID) == "" {
			return nil, errors.New("entry without id")
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("duplicate id %s", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// recoverCorrupt guarda los bytes ilegibles aparte y resetea el namespace.
func (s *Service) recoverCorrupt(ctx context.Context, raw []byte, cause error) {
	s.log.Warn("dose log unreadable, starting empty", map[string]any{
		"error": fmt.Errorf("%w: %v", ErrStorageCorruption, cause),
		"key":   EntriesKey,
		"bytes": len(raw),
	})

	if err := s.store.Set(ctx, corruptKey, raw); err != nil {
		s.log.Error("could not back up corrupt dose log", map[string]any{"error": err, "key": corruptKey})
		return
	}
	err := s.store.Set(ctx, EntriesKey, []byte("[]"))
	s.observe(err)
	if err != nil {
		s.log.Error("could not reset dose log", map[string]any{"error": err})
	}
}

// OnChange registra un callback que corre después de cada mutación confirmada,
// fuera del lock (puede llamar a List).
func (s *Service) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *Service) notify() {
	s.mu.Lock()
	hooks := append([]func(){}, s.onChange...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

func (s *Service) observe(err error) {
	if s.observeWrite != nil {
		s.observeWrite("doselog", err)
	}
}

// commit persiste next y recién entonces lo instala en memoria.
// Si el Set falla la colección en memoria queda como estaba. Requiere mu tomado.
func (s *Service) commit(ctx context.Context, next []Entry) error {
	b, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("doselog: encode: %w", err)
	}
	err = s.store.Set(ctx, EntriesKey, b)
	s.observe(err)
	if err != nil {
		s.log.Error("persist dose log failed", map[string]any{"error": err, "entries": len(next)})
		return fmt.Errorf("doselog: persist: %w", err)
	}
	s.entries = next
	return nil
}

func (s *Service) snapshot() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.clone()
	}
	return out
}

func (s *Service) indexOf(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) Add(ctx context.Context, d Draft) (Entry, error) {
	amount, err := d.validate()
	if err != nil {
		return Entry{}, err
	}

	at := d.Timestamp
	if at.IsZero() {
		at = s.now()
	}
	duration := DefaultDurationMinutes
	if d.EstimatedDurationMinutes != nil {
		duration = *d.EstimatedDurationMinutes
	}
	unit := strings.TrimSpace(d.Unit)
	if unit == "" {
		unit = DefaultUnit
	}

	e := Entry{
		SubstanceName:            strings.TrimSpace(d.SubstanceName),
		SubstanceID:              strings.TrimSpace(d.SubstanceID),
		Amount:                   amount,
		Unit:                     unit,
		Route:                    strings.TrimSpace(d.Route),
		Timestamp:                at.UnixMilli(),
		EstimatedDurationMinutes: duration,
		Notes:                    d.Notes,
	}
	if d.Snapshot != nil {
		e.SubstanceSnapshot = &Snapshot{InteractionsFlat: d.Snapshot.InteractionsFlat}
		e = e.clone()
		e.SubstanceSnapshot.normalizeStatuses()
	}

	s.mu.Lock()
	e.ID = s.newID()
	next := append(s.snapshot(), e)
	err = s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return Entry{}, err
	}

	s.log.Debug("dose logged", map[string]any{"id": e.ID, "substance": e.SubstanceName, "roa": e.Route})
	if s.observeAdd != nil {
		s.observeAdd(e)
	}
	s.notify()
	return e.clone(), nil
}

func (s *Service) Update(ctx context.Context, id string, p Patch) (Entry, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return Entry{}, ErrNotFound
	}

	next := s.snapshot()
	e := next[i]

	if p.Amount != nil {
		amount, err := ParseAmount(*p.Amount)
		if err != nil {
			s.mu.Unlock()
			return Entry{}, err
		}
		e.Amount = amount
	}
	if p.EstimatedDurationMinutes != nil {
		if err := validateDuration(*p.EstimatedDurationMinutes); err != nil {
			s.mu.Unlock()
			return Entry{}, err
		}
		e.EstimatedDurationMinutes = *p.EstimatedDurationMinutes
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	if p.Timestamp != nil {
		if p.Timestamp.IsZero() {
			s.mu.Unlock()
			return Entry{}, fmt.Errorf("%w: timestamp is required", ErrValidation)
		}
		e.Timestamp = p.Timestamp.UnixMilli()
	}

	next[i] = e
	err := s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return Entry{}, err
	}

	s.notify()
	return e.clone(), nil
}

func (s *Service) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}

	next := make([]Entry, 0, len(s.entries)-1)
	next = append(next, s.entries[:i]...)
	next = append(next, s.entries[i+1:]...)
	err := s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notify()
	return nil
}

func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	err := s.commit(ctx, []Entry{})
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.log.Info("dose log cleared", nil)
	s.notify()
	return nil
}

// List devuelve una copia en orden de inserción.
func (s *Service) List(_ context.Context) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Service) Get(_ context.Context, id string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return Entry{}, ErrNotFound
	}
	return s.entries[i].clone(), nil
}

func (s *Service) Stats(_ context.Context) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make(map[string]struct{}, len(s.entries))
	for _, e := range s.entries {
		names[e.SubstanceName] = struct{}{}
	}
	return Stats{TotalLogs: len(s.entries), UniqueSubstances: len(names)}
}
