package memory

import (
	"context"
	"sync"

	"dose-timeline/internal/ports/kv"
)

// KVStore es el key-value en memoria (tests, modo dev). No sobrevive a un reinicio.
type KVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string][]byte)}
}

func (s *KVStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := kv.ValidateKey(key); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	// copia: el caller no debe poder mutar lo guardado
	return append([]byte(nil), b...), true, nil
}

func (s *KVStore) Set(_ context.Context, key string, blob []byte) error {
	if err := kv.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), blob...)
	return nil
}

// Keys devuelve las keys guardadas (debug/tests).
func (s *KVStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.data))
	for k := range s.data {
		out = append(out, k)
	}
	return out
}
