package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dose-timeline/internal/adapters/catalog/static"
	"dose-timeline/internal/adapters/storage/memory"
	"dose-timeline/internal/domain/substances"
	"dose-timeline/internal/platform/config"
	"dose-timeline/internal/platform/logger"
	"dose-timeline/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

// withApp apunta openApp a un store en memoria compartido entre invocaciones.
func withApp(t *testing.T) {
	t.Helper()

	store := memory.NewKVStore()
	cat := static.New([]substances.Substance{
		{
			Name: "Caffeine",
			Roas: []substances.Roa{{
				Name:     "oral",
				Dose:     &substances.Dose{Units: "mg"},
				Duration: &substances.Duration{Total: &substances.TimedRange{Min: 3, Max: 5, Units: "hours"}},
			}},
		},
		{
			Name:             "Lithium",
			InteractionsFlat: []substances.Interaction{{Name: "Caffeine", Status: substances.SeverityDangerous, Note: "seizure risk"}},
		},
		{Name: "Cannabis"},
	})
	now := func() time.Time { return t0 }

	prevOpen, prevClock := openApp, clock
	t.Cleanup(func() { openApp, clock = prevOpen, prevClock })

	clock = now
	openApp = func(ctx context.Context, _ io.Writer) (*router.App, config.Config, func(), error) {
		cfg := config.Config{SearchDebounce: 10 * time.Millisecond}
		app, err := router.New(ctx, router.Options{
			Config:  cfg,
			Logger:  logger.Nop(),
			Store:   store,
			Catalog: cat,
			Now:     now,
		})
		return app, cfg, func() {}, err
	}
}

func run(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := cli(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestCLI_LogListTimelineCheck(t *testing.T) {
	withApp(t)

	code, out, _ := run(t, "", "log", "-substance", "caffeine", "-route", "oral", "-amount", "100")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Caffeine 100 mg oral (300 min)")

	code, out, _ = run(t, "", "check", "Lithium")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "WARNING: Dangerous interaction with active Caffeine (seizure risk)")

	code, _, errOut := run(t, "", "log", "-substance", "Lithium", "-route", "oral", "-amount", "300")
	require.Equal(t, 0, code)
	assert.Contains(t, errOut, "WARNING: Dangerous")

	code, out, _ = run(t, "", "list")
	require.Equal(t, 0, code)
	assert.Equal(t, 2, strings.Count(out, "now"))

	code, out, _ = run(t, "", "timeline", "-at", t0.Add(time.Hour).Format(time.RFC3339))
	require.Equal(t, 0, code)
	assert.Contains(t, out, "active (2)")
	assert.Contains(t, out, " 20.0%")
	assert.Contains(t, out, " 25.0%")
	assert.Contains(t, out, "history (0)")

	code, out, _ = run(t, "", "stats")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "total logs: 2")
}

func TestCLI_RejectsInvalidInput(t *testing.T) {
	withApp(t)

	code, _, errOut := run(t, "", "log", "-substance", "Caffeine", "-route", "oral", "-amount", "NaN")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "not a number")

	code, _, _ = run(t, "", "timeline", "-at", "yesterday")
	assert.Equal(t, 2, code)

	code, _, _ = run(t, "", "nope")
	assert.Equal(t, 2, code)

	code, _, errOut = run(t, "")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "usage: dosectl")

	code, _, errOut = run(t, "", "clear")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "-yes")

	code, _, _ = run(t, "", "rm", "missing-id")
	assert.Equal(t, 1, code)
}

func TestCLI_ExportImportClear(t *testing.T) {
	withApp(t)

	for _, s := range []string{"Caffeine", "Homebrew"} {
		code, _, _ := run(t, "", "log", "-substance", s, "-route", "oral", "-amount", "1")
		require.Equal(t, 0, code)
	}

	path := filepath.Join(t.TempDir(), "export.json")
	code, _, errOut := run(t, "", "export", "-o", path)
	require.Equal(t, 0, code)
	assert.Contains(t, errOut, "exported 2 entries")

	code, out, _ := run(t, "", "clear", "-yes")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "history cleared")

	code, out, _ = run(t, "", "export")
	require.Equal(t, 0, code)
	assert.Equal(t, "[]", strings.TrimSpace(out))

	code, out, _ = run(t, "", "import", "-mode", "merge", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "imported 2 entries (2 total, 2 substances)")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	_, out, _ = run(t, "", "export")
	assert.JSONEq(t, string(raw), out)
}

func TestCLI_SearchAndFavorites(t *testing.T) {
	withApp(t)

	code, _, _ := run(t, "", "fav", "add", "Lithium")
	require.Equal(t, 0, code)

	code, out, _ := run(t, "", "search")
	require.Equal(t, 0, code)
	assert.Equal(t, "Lithium\nCaffeine\nCannabis\n", out)

	code, out, _ = run(t, "", "fav", "ls")
	require.Equal(t, 0, code)
	assert.Equal(t, "Lithium\n", out)

	code, _, _ = run(t, "", "fav", "rm", "unknown")
	assert.Equal(t, 1, code)

	code, _, _ = run(t, "", "fav", "spin")
	assert.Equal(t, 2, code)
}

func TestCLI_SearchWatchDeliversLastQuery(t *testing.T) {
	withApp(t)

	code, out, _ := run(t, "c\nca\ncaf\n", "search", "-watch")
	require.Equal(t, 0, code)
	assert.True(t, strings.HasSuffix(out, "> caf\n  Caffeine\n"), out)
	assert.NotContains(t, out, "Cannabis")
}
