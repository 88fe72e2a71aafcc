package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requiere un Postgres real: DB_DSN=postgres://... go test ./internal/adapters/storage/postgres
func TestKVStore_Integration(t *testing.T) {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		t.Skip("DB_DSN not set")
	}

	db, err := Open(dsn)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	s := NewKVStore(db)
	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.EnsureSchema(ctx))

	key := fmt.Sprintf("test/%d", time.Now().UnixNano())
	t.Cleanup(func() { _, _ = db.Exec(`DELETE FROM kv_blobs WHERE key = $1`, key) })

	_, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, key, []byte(`[1]`)))
	require.NoError(t, s.Set(ctx, key, []byte(`[1,2]`)))

	got, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2]`, string(got))
}
