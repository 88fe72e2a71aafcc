package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"dose-timeline/internal/ports/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dose.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)

	_, ok, err := s.Get(ctx, "doselog/entries")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "doselog/entries", []byte(`[{"id":"a"}]`)))
	require.NoError(t, s.Set(ctx, "doselog/entries", []byte(`[{"id":"b"}]`)))
	require.NoError(t, s.Set(ctx, "preferences/favorites", []byte(`["LSD"]`)))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, ok, err := reopened.Get(ctx, "doselog/entries")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"b"}]`, string(got))

	fav, ok, err := reopened.Get(ctx, "preferences/favorites")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `["LSD"]`, string(fav))
}

func TestStore_EmptyBlobIsPresent(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "dose.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Set(ctx, "k", nil))
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestStore_InvalidKey(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "dose.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	assert.ErrorIs(t, s.Set(ctx, "", []byte("x")), kv.ErrInvalidKey)
	_, _, err = s.Get(ctx, "/abs")
	assert.ErrorIs(t, err, kv.ErrInvalidKey)
}
