package catalog

import (
	"context"
	"errors"

	"dose-timeline/internal/domain/substances"
)

// ErrNotFound lo devuelven los adapters cuando GetDetail no encuentra el nombre.
var ErrNotFound = errors.New("catalog: substance not found")

// Catalog es el servicio externo (read-only) de sustancias.
type Catalog interface {
	SearchByPrefix(ctx context.Context, text string) ([]substances.Item, error)
	GetDetail(ctx context.Context, name string) (substances.Substance, error)
	ListAll(ctx context.Context) ([]substances.Item, error)
}
