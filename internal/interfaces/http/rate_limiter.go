package http

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/jhoicas/faturas-analytics/internal/application/dto"
)

// BusinessRateLimiter limita por NIF las rutas caras (llamadas al LLM) para que
// un negocio no agote la cuota del proveedor.
type BusinessRateLimiter struct {
	limiters    map[string]*rateLimiterEntry
	mu          sync.Mutex
	rate        rate.Limit
	burst       int
	cleanupTick time.Duration
	entryTTL    time.Duration
	stop        chan struct{}
	stopOnce    sync.Once
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterConfig configuración del limitador.
type RateLimiterConfig struct {
	RequestsPerMinute int
	Burst             int
	CleanupInterval   time.Duration // cada cuánto se purgan entradas sin uso
	EntryTTL          time.Duration
}

// NewBusinessRateLimiter crea el limitador y arranca la limpieza periódica.
// Llamar Close al apagar el servidor.
func NewBusinessRateLimiter(cfg RateLimiterConfig) *BusinessRateLimiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	if cfg.EntryTTL <= 0 {
		cfg.EntryTTL = 10 * time.Minute
	}
	rl := &BusinessRateLimiter{
		limiters:    make(map[string]*rateLimiterEntry),
		rate:        rate.Limit(float64(cfg.RequestsPerMinute) / 60),
		burst:       cfg.Burst,
		cleanupTick: cfg.CleanupInterval,
		entryTTL:    cfg.EntryTTL,
		stop:        make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Close detiene la goroutine de limpieza.
func (rl *BusinessRateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *BusinessRateLimiter) getLimiter(nif string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if entry, ok := rl.limiters[nif]; ok {
		entry.lastSeen = time.Now()
		return entry.limiter
	}
	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters[nif] = &rateLimiterEntry{limiter: limiter, lastSeen: time.Now()}
	return limiter
}

func (rl *BusinessRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupTick)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *BusinessRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := time.Now().Add(-rl.entryTTL)
	for nif, entry := range rl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.limiters, nif)
		}
	}
}

// Middleware aplica el límite al NIF ya verificado por RequireBusinessAccess
// o, si la ruta no lo verifica, al de la petición. Sin NIF no limita: la
// validación posterior rechaza la petición.
func (rl *BusinessRateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		nif := GetBusinessNIF(c)
		if nif == "" {
			var conflict bool
			if nif, conflict = businessNIF(c); conflict {
				return nifConflict(c)
			}
		}
		if nif == "" {
			return c.Next()
		}
		limiter := rl.getLimiter(nif)
		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
		if !limiter.Allow() {
			c.Set("X-RateLimit-Remaining", "0")
			c.Set("Retry-After", strconv.Itoa(int(1/float64(rl.rate))+1))
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: "demasiadas solicitudes de análisis IA para este negocio, intente más tarde",
			})
		}
		c.Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		return c.Next()
	}
}
