package kv

import (
	"context"
	"errors"
	"strings"
)

// Store es el key-value durable donde se guardan los blobs serializados
// (colección de dosis, favoritos). Un único writer; last write wins.
// Un Get inmediatamente posterior a un Set completado siempre ve ese Set.
type Store interface {
	// Get devuelve (blob, true, nil) si existe, (nil, false, nil) si no.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, blob []byte) error
}

var ErrInvalidKey = errors.New("kv: invalid key")

// ValidateKey rechaza keys vacías, absolutas o con "..".
// Los adapters la usan antes de mapear la key a tabla/objeto.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
