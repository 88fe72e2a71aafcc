package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dose-timeline/internal/ports/kv"

	_ "modernc.org/sqlite" // driver sqlite en Go puro (sin cgo)
)

// Store guarda cada namespace como un blob en la tabla kv.
// Un Set es un único upsert, así que la escritura es atómica por key.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open crea (si hace falta) el archivo y la tabla.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "dose-timeline.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("sqlite: create dirs: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// un solo writer; evita SQLITE_BUSY entre conexiones del pool
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create kv table: %w", err)
	}

	return &Store{db: db, path: path, now: time.Now}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := kv.ValidateKey(key); err != nil {
		return nil, false, err
	}

	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM kv WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: get %s: %w", key, err)
	}
	return payload, true, nil
}

func (s *Store) Set(ctx context.Context, key string, blob []byte) error {
	if err := kv.ValidateKey(key); err != nil {
		return err
	}
	if blob == nil {
		blob = []byte{}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv(key, payload, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, blob, s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// Path devuelve el archivo configurado.
func (s *Store) Path() string { return s.path }
