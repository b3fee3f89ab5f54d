package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/faturas-analytics/internal/application/dto"
	"github.com/jhoicas/faturas-analytics/internal/infrastructure/ai"
	"github.com/jhoicas/faturas-analytics/pkg/config"
)

func summary() *dto.InsightSummary {
	return &dto.InsightSummary{NIF: "123456789", Alerts: []string{}, Insights: []string{"Producto más vendido: Café"}}
}

func TestAnthropic_GenerateInsight(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		msgs := body["messages"].([]any)
		content := msgs[0].(map[string]any)["content"].(string)
		assert.True(t, strings.HasPrefix(content, "Analiza"))
		assert.Contains(t, content, "123456789")

		_, _ = w.Write([]byte(`{"model":"claude-x","content":[{"type":"text","text":"` + "```\\n- Ventas al alza\\n```" + `"}],"usage":{"input_tokens":100,"output_tokens":20}}`))
	}))
	defer srv.Close()

	svc := ai.NewAnthropicService("secret", "claude-x").WithEndpoint(srv.URL)
	res, err := svc.GenerateInsight(context.Background(), summary(), "Analiza las ventas")
	require.NoError(t, err)
	assert.Equal(t, "- Ventas al alza", res.Content)
	assert.Equal(t, 120, res.TokensUsed)
	assert.Equal(t, "claude-x", res.Model)
}

func TestAnthropic_ErrorDeAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	_, err := ai.NewAnthropicService("secret", "m").WithEndpoint(srv.URL).
		GenerateInsight(context.Background(), summary(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit_error")
}

func TestAnthropic_SinAPIKey(t *testing.T) {
	_, err := ai.NewAnthropicService("", "m").GenerateInsight(context.Background(), summary(), "x")
	assert.Error(t, err)
}

func TestAnthropic_RespetaContexto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := ai.NewAnthropicService("k", "m").WithEndpoint(srv.URL).GenerateInsight(ctx, summary(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGemini_GenerateInsight(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Resumen "},{"text":"estable"}]}}],"usageMetadata":{"totalTokenCount":77}}`))
	}))
	defer srv.Close()

	res, err := ai.NewGeminiService("k", "gemini-test").WithBaseURL(srv.URL).
		GenerateInsight(context.Background(), summary(), "x")
	require.NoError(t, err)
	assert.Equal(t, "Resumen estable", res.Content)
	assert.Equal(t, 77, res.TokensUsed)
	assert.Equal(t, "gemini-test", res.Model)
}

func TestGemini_SinCandidatos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := ai.NewGeminiService("k", "m").WithBaseURL(srv.URL).GenerateInsight(context.Background(), summary(), "x")
	assert.Error(t, err)
}

func TestNewFromConfig(t *testing.T) {
	llm, err := ai.NewFromConfig(config.AIConfig{})
	require.NoError(t, err)
	assert.Nil(t, llm)

	_, err = ai.NewFromConfig(config.AIConfig{Provider: ai.ProviderAnthropic})
	assert.Error(t, err)

	llm, err = ai.NewFromConfig(config.AIConfig{Provider: ai.ProviderGemini, GeminiKey: "k", GeminiModel: "m"})
	require.NoError(t, err)
	assert.IsType(t, &ai.GeminiService{}, llm)

	_, err = ai.NewFromConfig(config.AIConfig{Provider: "openai"})
	assert.Error(t, err)
}
