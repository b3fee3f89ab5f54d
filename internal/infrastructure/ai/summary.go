package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jhoicas/faturas-analytics/internal/application/dto"
	"github.com/jhoicas/faturas-analytics/internal/application/ports"
	"github.com/jhoicas/faturas-analytics/pkg/config"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"

	maxResponseBytes = 256 * 1024
)

// systemPrompt define el rol del modelo para todos los tipos de análisis.
const systemPrompt = `Eres un analista de negocio especializado en comercio minorista y restauración.
Recibes métricas agregadas de ventas de un punto de venta comparando un período actual con el período anterior de igual duración.
Responde en español, en texto plano con viñetas breves, sin tablas ni bloques de código.
No inventes cifras: usa solo los datos recibidos.`

// NewFromConfig devuelve el adaptador del proveedor configurado, o nil si la IA
// está desactivada o falta la API key.
func NewFromConfig(cfg config.AIConfig) (ports.LLMService, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case ProviderAnthropic:
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("AI: ANTHROPIC_API_KEY no configurado")
		}
		return NewAnthropicService(cfg.AnthropicKey, cfg.AnthropicModel), nil
	case ProviderGemini:
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("AI: GEMINI_API_KEY no configurado")
		}
		return NewGeminiService(cfg.GeminiKey, cfg.GeminiModel), nil
	default:
		return nil, fmt.Errorf("AI: proveedor desconocido %q", cfg.Provider)
	}
}

// userMessage une la instrucción del tipo de análisis con el resumen en JSON.
func userMessage(summary *dto.InsightSummary, prompt string) (string, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("AI: serializar resumen: %w", err)
	}
	return prompt + "\n\nDatos:\n" + string(data), nil
}

// cleanText quita el envoltorio markdown ``` que algunos modelos añaden.
func cleanText(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	after := text[3:]
	if nl := strings.Index(after, "\n"); nl != -1 {
		after = after[nl+1:]
	}
	if end := strings.LastIndex(after, "```"); end != -1 {
		after = after[:end]
	}
	return strings.TrimSpace(after)
}
