// Package static sirve el catálogo desde memoria: un archivo JSON sembrado
// (mismo formato que /api/substances/{name}) o una lista armada en código.
// Se usa offline y en tests end-to-end.
package static

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"dose-timeline/internal/domain/substances"
	"dose-timeline/internal/ports/catalog"
)

type Catalog struct {
	byName map[string]substances.Substance
	items  []substances.Item
}

var _ catalog.Catalog = (*Catalog)(nil)

func New(subs []substances.Substance) *Catalog {
	c := &Catalog{byName: make(map[string]substances.Substance, len(subs))}
	for _, s := range subs {
		if strings.TrimSpace(s.Name) == "" {
			continue
		}
		if _, dup := c.byName[s.Name]; dup {
			continue
		}
		c.byName[s.Name] = s
		c.items = append(c.items, s.Item())
	}
	sort.Slice(c.items, func(i, j int) bool { return c.items[i].Name < c.items[j].Name })
	return c
}

// Load lee un arreglo JSON de sustancias completas.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("static catalog: %w", err)
	}
	var subs []substances.Substance
	if err := json.Unmarshal(b, &subs); err != nil {
		return nil, fmt.Errorf("static catalog: decode %s: %w", path, err)
	}
	return New(subs), nil
}

func (c *Catalog) SearchByPrefix(ctx context.Context, text string) ([]substances.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(text))
	out := []substances.Item{}
	for _, it := range c.items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (c *Catalog) ListAll(ctx context.Context) ([]substances.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]substances.Item{}, c.items...), nil
}

// GetDetail: exacto primero, después case-insensitive.
func (c *Catalog) GetDetail(ctx context.Context, name string) (substances.Substance, error) {
	if err := ctx.Err(); err != nil {
		return substances.Substance{}, err
	}
	if s, ok := c.byName[name]; ok {
		return s, nil
	}
	for _, it := range c.items {
		if substances.SameName(it.Name, name) {
			return c.byName[it.Name], nil
		}
	}
	return substances.Substance{}, catalog.ErrNotFound
}
