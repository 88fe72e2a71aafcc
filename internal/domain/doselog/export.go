package doselog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Export serializa la colección como array JSON indentado (2 espacios).
// Es el mismo formato que acepta Import.
func (s *Service) Export(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	entries := s.snapshot()
	s.mu.Unlock()

	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("doselog: export: %w", err)
	}
	return b, nil
}

// importRecord acepta backups viejos sin estimatedDurationMinutes (se asume 240).
type importRecord struct {
	Entry
	EstimatedDurationMinutes *int `json:"estimatedDurationMinutes"`
}

func decodeImport(data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var records []importRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: invalid export: %v", ErrValidation, err)
	}

	out := make([]Entry, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		e := r.Entry
		e.EstimatedDurationMinutes = DefaultDurationMinutes
		if r.EstimatedDurationMinutes != nil {
			e.EstimatedDurationMinutes = *r.EstimatedDurationMinutes
		}
		if e.Unit == "" {
			e.Unit = DefaultUnit
		}
		e.SubstanceSnapshot.normalizeStatuses()
		if err := validateEntry(e); err != nil {
			return nil, err
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrValidation, e.ID)
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out, nil
}

// Import carga un export. Replace reemplaza todo; Merge hace upsert por id
// manteniendo la posición de los existentes. Devuelve cuántos registros entraron.
func (s *Service) Import(ctx context.Context, data []byte, mode ImportMode) (int, error) {
	incoming, err := decodeImport(data)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	var next []Entry
	switch mode {
	case ImportReplace, "":
		next = incoming
	case ImportMerge:
		next = s.snapshot()
		pos := make(map[string]int, len(next))
		for i, e := range next {
			pos[e.ID] = i
		}
		for _, e := range incoming {
			if i, ok := pos[e.ID]; ok {
				next[i] = e
				continue
			}
			pos[e.ID] = len(next)
			next = append(next, e)
		}
	default:
		s.mu.Unlock()
		return 0, fmt.Errorf("%w: unknown import mode %q", ErrValidation, mode)
	}

	err = s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	s.log.Info("dose log imported", map[string]any{"mode": string(mode), "entries": len(incoming)})
	s.notify()
	return len(incoming), nil
}
