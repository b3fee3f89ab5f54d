package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InsightMetrics métricas de una ventana tal como se envían al LLM.
type InsightMetrics struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	Invoices      int             `json:"invoices"`
	ItemsSold     int64           `json:"items_sold"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

// InsightSummary resumen estructurado que recibe el generador de narrativa.
type InsightSummary struct {
	NIF         string           `json:"nif"`
	Branch      string           `json:"branch,omitempty"`
	Period      PeriodDTO        `json:"period"`
	Current     InsightMetrics   `json:"current"`
	Prior       InsightMetrics   `json:"prior"`
	TopProducts []ProductRankDTO `json:"top_products"`
	Peaks       []HeatmapCellDTO `json:"peaks"`
	Alerts      []string         `json:"alerts"`
	Insights    []string         `json:"insights"`
}

// InsightResult texto devuelto por el LLM.
type InsightResult struct {
	Content    string `json:"content"`
	Model      string `json:"model"`
	TokensUsed int    `json:"tokens_used"`
}

// InsightRequest cuerpo de POST /api/ai/analise.
type InsightRequest struct {
	NIF    string `json:"nif"`
	Branch string `json:"filial"`
	Period int    `json:"periodo"`
	Kind   string `json:"tipo"` // vendas | operacional | financeiro | marketing | estrategico
}

// InsightDTO análisis narrativo de un tipo.
type InsightDTO struct {
	NIF         string    `json:"nif"`
	Branch      string    `json:"branch,omitempty"`
	Period      PeriodDTO `json:"period"`
	Kind        string    `json:"kind"`
	Content     string    `json:"content"`
	Model       string    `json:"model"`
	TokensUsed  int       `json:"tokens_used"`
	Cached      bool      `json:"cached"`
	GeneratedAt time.Time `json:"generated_at"`
}

// InsightBatchDTO respuesta de GET /api/ai/analise-completa.
type InsightBatchDTO struct {
	NIF         string                `json:"nif"`
	Branch      string                `json:"branch,omitempty"`
	Period      PeriodDTO             `json:"period"`
	Analyses    map[string]InsightDTO `json:"analyses"`
	Executive   *InsightDTO           `json:"executive_summary,omitempty"`
	Errors      []string              `json:"errors,omitempty"`
	TotalTokens int                   `json:"total_tokens"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// InsightCacheClearDTO respuesta de DELETE /api/ai/analise-cache.
type InsightCacheClearDTO struct {
	NIF         string `json:"nif"`
	Branch      string `json:"branch,omitempty"`
	KeysRemoved int    `json:"keys_removed"`
}
