package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/faturas-analytics/internal/application/ports"
	"github.com/jhoicas/faturas-analytics/pkg/config"
)

const pingTimeout = 3 * time.Second

// FromConfig elige el backend según CACHE_BACKEND. Para Redis verifica la
// conexión; close libera el cliente (no-op en los demás backends).
func FromConfig(ctx context.Context, cacheCfg config.CacheConfig, redisCfg config.RedisConfig) (c ports.ResultCache, close func() error, err error) {
	noClose := func() error { return nil }
	switch cacheCfg.Backend {
	case config.CacheMemory:
		return NewMemoryCache(), noClose, nil
	case config.CacheNone:
		return NoopCache{}, noClose, nil
	case config.CacheRedis:
	default:
		return nil, nil, fmt.Errorf("cache: backend desconocido %q", cacheCfg.Backend)
	}

	var rc *RedisCache
	if redisCfg.URL != "" {
		if rc, err = NewRedisCacheFromURL(redisCfg.URL); err != nil {
			return nil, nil, err
		}
	} else {
		rc = NewRedisCache(redisCfg.Addr, redisCfg.Password, redisCfg.DB)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		_ = rc.Close()
		return nil, nil, fmt.Errorf("cache: ping redis: %w", err)
	}
	return rc, rc.Close, nil
}
