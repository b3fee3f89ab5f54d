package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Período ───────────────────────────────────────────────────────────────────

// PeriodDTO describe las dos ventanas comparadas (fechas AAAA-MM-DD, inclusivas).
type PeriodDTO struct {
	Code         int    `json:"code"`
	Name         string `json:"name"`
	CurrentStart string `json:"current_start"`
	CurrentEnd   string `json:"current_end"`
	PriorStart   string `json:"prior_start"`
	PriorEnd     string `json:"prior_end"`
	CurrentDays  int    `json:"current_days"`
	PriorDays    int    `json:"prior_days"`
}

// ── Varianzas ─────────────────────────────────────────────────────────────────

// VarianceDTO comparación actual vs anterior, redondeada a 2 decimales.
type VarianceDTO struct {
	Current decimal.Decimal `json:"current"`
	Prior   decimal.Decimal `json:"prior"`
	Delta   decimal.Decimal `json:"delta"`
	Percent decimal.Decimal `json:"percent"` // 0 cuando el anterior es 0
	Trend   string          `json:"trend"`   // UP | DOWN | FLAT
	Label   string          `json:"label"`   // ej: "+12.5%"
	Color   string          `json:"color"`   // verde si sube o se mantiene, rojo si baja
}

// MetricsDTO las cuatro métricas principales del resumen.
type MetricsDTO struct {
	TotalSales    VarianceDTO `json:"total_sales"`
	Receipts      VarianceDTO `json:"receipts"`
	ItemsSold     VarianceDTO `json:"items_sold"`
	AverageTicket VarianceDTO `json:"average_ticket"`
}

// HourlyComparisonDTO fila de la tabla horaria comparativa.
type HourlyComparisonDTO struct {
	Hour          string          `json:"hour"` // "HH:00"
	HourNum       int             `json:"hour_num"`
	CurrentVolume decimal.Decimal `json:"current_volume"`
	CurrentCount  int             `json:"current_count"`
	PriorVolume   decimal.Decimal `json:"prior_volume"`
	PriorCount    int             `json:"prior_count"`
}

// SummaryReportDTO respuesta de GET /api/stats/resumo.
type SummaryReportDTO struct {
	NIF         string                `json:"nif"`
	Branch      string                `json:"branch,omitempty"`
	Period      PeriodDTO             `json:"period"`
	Metrics     MetricsDTO            `json:"metrics"`
	Hourly      []HourlyComparisonDTO `json:"hourly"`
	LastUpdated string                `json:"last_updated"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// ── Productos ─────────────────────────────────────────────────────────────────

// ProductRankDTO producto del ranking por monto.
type ProductRankDTO struct {
	Rank     int             `json:"rank"`
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`    // Σ cantidad × precio unitario
	SharePct decimal.Decimal `json:"share_pct"` // % del monto total del período
}

// ProductsReportDTO respuesta de GET /api/products.
type ProductsReportDTO struct {
	NIF           string           `json:"nif"`
	Branch        string           `json:"branch,omitempty"`
	Period        PeriodDTO        `json:"period"`
	Products      []ProductRankDTO `json:"products"`
	TotalProducts int              `json:"total_products"` // antes de truncar
	Amount        VarianceDTO      `json:"amount"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

// ── Mapa de calor ─────────────────────────────────────────────────────────────

// HeatmapCellDTO celda hora × día de la semana (lunes = 0).
type HeatmapCellDTO struct {
	Hour          string          `json:"hour"` // "HH:00"
	HourNum       int             `json:"hour_num"`
	Weekday       string          `json:"weekday"`
	WeekdayNum    int             `json:"weekday_num"`
	Volume        decimal.Decimal `json:"volume"`
	InvoiceCount  int             `json:"invoice_count"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

// HeatmapDTO grilla de un bucket: solo celdas con facturas, más los picos.
type HeatmapDTO struct {
	Cells        []HeatmapCellDTO `json:"cells"`
	PeakByVolume *HeatmapCellDTO  `json:"peak_by_volume"`
	PeakByCount  *HeatmapCellDTO  `json:"peak_by_count"`
	TotalVolume  decimal.Decimal  `json:"total_volume"`
	TotalCount   int              `json:"total_count"`
}

// HeatmapReportDTO respuesta de GET /api/heatmap.
type HeatmapReportDTO struct {
	NIF         string      `json:"nif"`
	Branch      string      `json:"branch,omitempty"`
	Period      PeriodDTO   `json:"period"`
	Current     HeatmapDTO  `json:"current"`
	Prior       HeatmapDTO  `json:"prior"`
	Volume      VarianceDTO `json:"volume"`
	Count       VarianceDTO `json:"count"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// ── Análisis completo ─────────────────────────────────────────────────────────

// DailySalesDTO ventas de un día.
type DailySalesDTO struct {
	Date   string          `json:"date"`
	Volume decimal.Decimal `json:"volume"`
	Count  int             `json:"count"`
}

// BranchVolumeDTO volumen de una filial en el período actual.
type BranchVolumeDTO struct {
	Branch   string          `json:"branch"`
	Volume   decimal.Decimal `json:"volume"`
	Count    int             `json:"count"`
	SharePct decimal.Decimal `json:"share_pct"`
}

// PeriodTotalsDTO totales de una de las dos ventanas.
type PeriodTotalsDTO struct {
	Name          string          `json:"name"`
	Start         string          `json:"start"`
	End           string          `json:"end"`
	Days          int             `json:"days"`
	TotalVolume   decimal.Decimal `json:"total_volume"`
	TotalInvoices int             `json:"total_invoices"`
	TotalItems    int64           `json:"total_items"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

// PeriodComparisonDTO totales lado a lado.
type PeriodComparisonDTO struct {
	Current PeriodTotalsDTO `json:"current"`
	Prior   PeriodTotalsDTO `json:"prior"`
}

// DetailedStatsDTO estadísticas derivadas del período actual.
type DetailedStatsDTO struct {
	TotalVolume      decimal.Decimal `json:"total_volume"`
	TotalInvoices    int             `json:"total_invoices"`
	TotalItems       int64           `json:"total_items"`
	InvoicesPerDay   decimal.Decimal `json:"invoices_per_day"`
	VolumePerInvoice decimal.Decimal `json:"volume_per_invoice"`
	TopProduct       *ProductRankDTO `json:"top_product"`
	BusiestSlot      *HeatmapCellDTO `json:"busiest_slot"`
}

// Tipos de AIAnalysisDTO.Kind.
const (
	AnalysisKindAI       = "ai_analysis"
	AnalysisKindError    = "ai_error"
	AnalysisKindDisabled = "ai_disabled"
)

// AIAnalysisDTO enriquecimiento narrativo opcional. Nunca bloquea la respuesta.
type AIAnalysisDTO struct {
	Content     string    `json:"content"`
	Kind        string    `json:"kind"`
	Note        string    `json:"note"`
	Model       string    `json:"model,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// FullAnalysisDTO respuesta de GET /api/analise-completa.
type FullAnalysisDTO struct {
	NIF           string                `json:"nif"`
	Branch        string                `json:"branch,omitempty"`
	Period        PeriodDTO             `json:"period"`
	LastUpdated   string                `json:"last_updated"`
	Metrics       MetricsDTO            `json:"metrics"`
	Hourly        []HourlyComparisonDTO `json:"hourly"`
	TopProducts   []ProductRankDTO      `json:"top_products"`
	Peaks         []HeatmapCellDTO      `json:"peaks"`
	Last7Days     []DailySalesDTO       `json:"last_7_days"`
	Branches      []BranchVolumeDTO     `json:"branches,omitempty"`
	Alerts        []string              `json:"alerts"`
	Insights      []string              `json:"insights"`
	DetailedStats DetailedStatsDTO      `json:"detailed_stats"`
	Comparison    PeriodComparisonDTO   `json:"comparison"`
	Analysis      AIAnalysisDTO         `json:"analysis"`
	GeneratedAt   time.Time             `json:"generated_at"`
}
