package http_test

import (
	"net/http"
	"strings"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/faturas-analytics/internal/interfaces/http"
)

func TestRequestLogger_PropagaRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(apphttp.RequestLogger(zerolog.Nop()))
	app.Get("/ping", func(c *fiber.Ctx) error {
		// El sub-logger debe estar disponible en el contexto del handler.
		assert.NotNil(t, zerolog.Ctx(c.UserContext()))
		return c.SendString("pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))

	resp2, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Len(t, resp2.Header.Get("X-Request-ID"), 36, "se genera un UUID cuando no viene")
}

func TestRateLimiter_NegociosIndependientes(t *testing.T) {
	limiter := apphttp.NewBusinessRateLimiter(apphttp.RateLimiterConfig{RequestsPerMinute: 1, Burst: 1})
	defer limiter.Close()

	app := fiber.New()
	app.Get("/ai", limiter.Middleware(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	status := func(nif string) int {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ai?nif="+nif, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, status("111"))
	assert.Equal(t, http.StatusTooManyRequests, status("111"))
	assert.Equal(t, http.StatusOK, status("222"), "otro NIF tiene su propio cupo")
	assert.Equal(t, http.StatusOK, status(""), "sin NIF no se limita")
}

func TestRateLimiter_NIFDistintoEnQueryYCuerpo_Retorna400(t *testing.T) {
	limiter := apphttp.NewBusinessRateLimiter(apphttp.RateLimiterConfig{RequestsPerMinute: 1, Burst: 1})
	defer limiter.Close()

	app := fiber.New()
	app.Post("/ai", limiter.Middleware(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/ai?nif=111", strings.NewReader(`{"nif":"222"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
