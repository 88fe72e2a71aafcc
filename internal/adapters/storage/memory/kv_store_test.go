package memory

import (
	"context"
	"errors"
	"testing"

	"dose-timeline/internal/ports/kv"
)

func TestKVStore_ReadAfterWrite(t *testing.T) {
	ctx := context.Background()
	s := NewKVStore()

	if _, ok, err := s.Get(ctx, "doselog/entries"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	blob := []byte(`[1]`)
	if err := s.Set(ctx, "doselog/entries", blob); err != nil {
		t.Fatalf("Set: %v", err)
	}
	blob[0] = 'X' // mutar el buffer del caller no afecta lo guardado

	got, ok, err := s.Get(ctx, "doselog/entries")
	if err != nil || !ok || string(got) != "[1]" {
		t.Fatalf("unexpected get: %q ok=%v err=%v", got, ok, err)
	}

	if err := s.Set(ctx, "doselog/entries", []byte(`[2]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _, _ = s.Get(ctx, "doselog/entries")
	if string(got) != "[2]" {
		t.Fatalf("last write must win, got %q", got)
	}
}

func TestKVStore_RejectsInvalidKeys(t *testing.T) {
	s := NewKVStore()
	if err := s.Set(context.Background(), "../etc", nil); !errors.Is(err, kv.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}
