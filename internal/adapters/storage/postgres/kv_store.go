package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dose-timeline/internal/ports/kv"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_blobs (
	key        TEXT PRIMARY KEY,
	payload    BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// KVStore implementa kv.Store sobre la tabla kv_blobs.
type KVStore struct {
	db *sql.DB
}

func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db}
}

// EnsureSchema crea la tabla si no existe. Idempotente.
func (s *KVStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("postgres: create kv_blobs: %w", err)
	}
	return nil
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := kv.ValidateKey(key); err != nil {
		return nil, false, err
	}

	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM kv_blobs WHERE key = $1`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func (s *KVStore) Set(ctx context.Context, key string, blob []byte) error {
	if err := kv.ValidateKey(key); err != nil {
		return err
	}
	if blob == nil {
		blob = []byte{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_blobs (key, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`, key, blob)
	return err
}
