package ports

import (
	"context"

	"github.com/jhoicas/faturas-analytics/internal/application/dto"
)

// LLMService define el puerto de salida hacia los servicios de inteligencia artificial.
// Cualquier adaptador (Anthropic, Gemini, mock) debe implementar esta interfaz.
type LLMService interface {
	// GenerateInsight recibe el resumen estructurado de la comparación y el
	// prompt de la plantilla elegida, y devuelve el texto narrativo.
	// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
	GenerateInsight(ctx context.Context, summary *dto.InsightSummary, prompt string) (*dto.InsightResult, error)
}
