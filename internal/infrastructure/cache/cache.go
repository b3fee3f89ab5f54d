// Package cache implementa ports.ResultCache: Redis para producción, memoria
// para desarrollo y tests, y Noop cuando el caché está desactivado.
package cache

import (
	"context"
	"time"

	"github.com/jhoicas/faturas-analytics/internal/application/ports"
)

var (
	_ ports.ResultCache = NoopCache{}
	_ ports.ResultCache = (*MemoryCache)(nil)
	_ ports.ResultCache = (*RedisCache)(nil)
)

// NoopCache nunca guarda nada: cada lectura es un fallo de caché.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NoopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NoopCache) Delete(context.Context, string) (bool, error) { return false, nil }
