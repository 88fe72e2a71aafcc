package static

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dose-timeline/internal/domain/substances"
	"dose-timeline/internal/ports/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_SearchAndDetail(t *testing.T) {
	ctx := context.Background()
	c := New([]substances.Substance{
		{Name: "LSD"},
		{Name: "Caffeine", Summary: "stimulant"},
		{Name: "Cannabis"},
		{Name: ""},
	})

	all, err := c.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Caffeine", all[0].Name)

	found, err := c.SearchByPrefix(ctx, "CAN")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Cannabis", found[0].Name)

	none, err := c.SearchByPrefix(ctx, "zzz")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	s, err := c.GetDetail(ctx, "caffeine")
	require.NoError(t, err)
	assert.Equal(t, "stimulant", s.Summary)

	_, err = c.GetDetail(ctx, "nope")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	seed := `[{"_id":"1","name":"Caffeine","roas":[{"name":"oral","duration":{"total":{"min":3,"max":5,"units":"hours"}}}],
	          "interactions_flat":[{"name":"MDMA","status":"Caution"}]}]`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	c, err := Load(path)
	require.NoError(t, err)

	s, err := c.GetDetail(context.Background(), "Caffeine")
	require.NoError(t, err)
	assert.Equal(t, 300, s.DurationFor("oral"))
	assert.Equal(t, substances.SeverityCaution, s.InteractionsFlat[0].Status)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
