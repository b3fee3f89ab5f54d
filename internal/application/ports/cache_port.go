package ports

import (
	"context"
	"time"
)

// ResultCache almacena resultados serializados por clave.
// Get devuelve (nil, false, nil) cuando la clave no existe o expiró.
// ttl = 0 significa sin expiración.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
}
