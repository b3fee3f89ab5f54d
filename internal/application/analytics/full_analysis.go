package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/faturas-analytics/internal/application/dto"
	domanalytics "github.com/jhoicas/faturas-analytics/internal/domain/analytics"
	"github.com/jhoicas/faturas-analytics/internal/domain/period"
)

const (
	lastDaysWindow  = 7
	insightProducts = 5 // productos enviados al LLM
	insightPeaks    = 3
)

// alertThreshold variación porcentual del volumen que dispara una alerta o un insight.
var alertThreshold = decimal.NewFromInt(20)

// FullAnalysis combina resumen, productos, picos, series y el enriquecimiento
// narrativo. Un fallo de la IA nunca hace fallar la respuesta.
func (s *Service) FullAnalysis(ctx context.Context, q Query) (*dto.FullAnalysisDTO, error) {
	key := ResultKey(ViewFullAnalysis, q.NIF, q.Branch, q.Code)
	report, err := readThroughIf(ctx, s, key, func(ctx context.Context) (*dto.FullAnalysisDTO, error) {
		snap, err := s.load(ctx, q)
		if err != nil {
			return nil, err
		}
		report := s.buildFull(q, snap)
		report.Analysis = s.narrate(ctx, toInsightSummary(report))
		return report, nil
	}, func(r *dto.FullAnalysisDTO) bool {
		// Un fallo de la IA no se cachea: la próxima petición reintenta.
		return r.Analysis.Kind != dto.AnalysisKindError
	})
	if err != nil {
		return nil, err
	}
	report.LastUpdated, _ = s.LastUpdated(ctx, q.NIF, q.Branch)
	return report, nil
}

// InsightSummary arma el resumen estructurado que se entrega al LLM, sin llamar a la IA.
func (s *Service) InsightSummary(ctx context.Context, q Query) (*dto.InsightSummary, error) {
	snap, err := s.load(ctx, q)
	if err != nil {
		return nil, err
	}
	return toInsightSummary(s.buildFull(q, snap)), nil
}

func (s *Service) buildFull(q Query, snap *snapshot) *dto.FullAnalysisDTO {
	sel, agg := snap.sel, snap.agg
	order := s.opts.WeekdayOrder

	ranked := domanalytics.RankProducts(agg.CurrentInvoices)
	heat := domanalytics.BuildHeatmap(agg.CurrentInvoices, order)
	peaks := toCellDTOs(order, heat.Top(s.opts.HeatmapPeaks))
	top := toProductDTOs(ranked, s.opts.TopProducts)

	report := &dto.FullAnalysisDTO{
		NIF:         q.NIF,
		Branch:      q.Branch,
		Period:      PeriodDTOFrom(sel),
		Metrics:     toMetricsDTO(agg),
		Hourly:      toHourlyDTO(agg.Hourly),
		TopProducts: top,
		Peaks:       peaks,
		Last7Days:   lastDays(snap),
		Comparison: dto.PeriodComparisonDTO{
			Current: toPeriodTotals(sel, sel.Current, agg.Current),
			Prior:   toPeriodTotals(sel, sel.Prior, agg.Prior),
		},
		GeneratedAt: s.now().UTC(),
	}
	if q.Branch == "" {
		report.Branches = branchBreakdown(agg)
	}
	report.Alerts, report.Insights = alertsAndInsights(agg, peaks, top)
	report.DetailedStats = detailedStats(sel, agg, peaks, top)
	return report
}

// lastDays serie diaria de los últimos 7 días del período actual. Nunca
// incluye días ni facturas del período anterior.
func lastDays(snap *snapshot) []dto.DailySalesDTO {
	cur := snap.sel.Current
	start := cur.End.AddDate(0, 0, -(lastDaysWindow - 1))
	if start.Before(cur.Start) {
		start = cur.Start
	}
	w, err := period.NewDateWindow(start, cur.End)
	if err != nil {
		return nil
	}
	series := domanalytics.DailyTotals(snap.agg.CurrentInvoices, w)
	out := make([]dto.DailySalesDTO, 0, len(series))
	for _, d := range series {
		out = append(out, dto.DailySalesDTO{Date: d.Date, Volume: d.Volume.Round(2), Count: d.Count})
	}
	return out
}

func branchBreakdown(agg domanalytics.Aggregation) []dto.BranchVolumeDTO {
	totals := domanalytics.BranchTotals(agg.CurrentInvoices)
	out := make([]dto.BranchVolumeDTO, 0, len(totals))
	for _, b := range totals {
		out = append(out, dto.BranchVolumeDTO{
			Branch:   b.Branch,
			Volume:   b.Volume.Round(2),
			Count:    b.Count,
			SharePct: share(b.Volume, agg.Current.Total),
		})
	}
	return out
}

// alertsAndInsights: caída de volumen mayor al umbral es alerta; subida mayor
// al umbral, pico principal y producto líder son insights.
func alertsAndInsights(agg domanalytics.Aggregation, peaks []dto.HeatmapCellDTO, top []dto.ProductRankDTO) ([]string, []string) {
	p := message.NewPrinter(language.Spanish)
	alerts, insights := []string{}, []string{}

	if agg.Prior.Total.IsPositive() {
		v := domanalytics.Compare(agg.Current.Total, agg.Prior.Total)
		pct := v.Percent.InexactFloat64()
		switch {
		case v.Percent.LessThan(alertThreshold.Neg()):
			alerts = append(alerts, p.Sprintf("El volumen cayó %.1f%% respecto al período anterior", -pct))
		case v.Percent.GreaterThan(alertThreshold):
			insights = append(insights, p.Sprintf("El volumen aumentó %.1f%% respecto al período anterior", pct))
		}
	}
	if len(peaks) > 0 {
		insights = append(insights, p.Sprintf("Horario de mayor movimiento: %s a las %s", peaks[0].Weekday, peaks[0].Hour))
	}
	if len(top) > 0 {
		insights = append(insights, p.Sprintf("Producto más vendido: %s (%d unidades)", top[0].Name, top[0].Quantity))
	}
	return alerts, insights
}

func detailedStats(sel period.Selection, agg domanalytics.Aggregation, peaks []dto.HeatmapCellDTO, top []dto.ProductRankDTO) dto.DetailedStatsDTO {
	cur := agg.Current
	days := sel.Current.Days()
	if days < 1 {
		days = 1
	}
	perInvoice := decimal.Zero
	if cur.Count > 0 {
		perInvoice = cur.Total.Div(decimal.NewFromInt(int64(cur.Count)))
	}
	stats := dto.DetailedStatsDTO{
		TotalVolume:      cur.Total.Round(2),
		TotalInvoices:    cur.Count,
		TotalItems:       cur.Items,
		InvoicesPerDay:   decimal.NewFromInt(int64(cur.Count)).Div(decimal.NewFromInt(int64(days))).Round(2),
		VolumePerInvoice: perInvoice.Round(2),
	}
	if len(top) > 0 {
		first := top[0]
		stats.TopProduct = &first
	}
	if len(peaks) > 0 {
		first := peaks[0]
		stats.BusiestSlot = &first
	}
	return stats
}

func toInsightSummary(r *dto.FullAnalysisDTO) *dto.InsightSummary {
	cmp := r.Comparison
	metrics := func(t dto.PeriodTotalsDTO) dto.InsightMetrics {
		return dto.InsightMetrics{
			TotalSales:    t.TotalVolume,
			Invoices:      t.TotalInvoices,
			ItemsSold:     t.TotalItems,
			AverageTicket: t.AverageTicket,
		}
	}
	products := r.TopProducts
	if len(products) > insightProducts {
		products = products[:insightProducts]
	}
	peaks := r.Peaks
	if len(peaks) > insightPeaks {
		peaks = peaks[:insightPeaks]
	}
	return &dto.InsightSummary{
		NIF:         r.NIF,
		Branch:      r.Branch,
		Period:      r.Period,
		Current:     metrics(cmp.Current),
		Prior:       metrics(cmp.Prior),
		TopProducts: products,
		Peaks:       peaks,
		Alerts:      r.Alerts,
		Insights:    r.Insights,
	}
}

// narrate pide al LLM el análisis de ventas con timeout propio. Cualquier
// fallo se convierte en un placeholder descriptivo.
func (s *Service) narrate(ctx context.Context, summary *dto.InsightSummary) dto.AIAnalysisDTO {
	now := s.now().UTC()
	if s.llm == nil {
		return dto.AIAnalysisDTO{
			Kind:        dto.AnalysisKindDisabled,
			Note:        "Análisis de IA no configurado",
			GeneratedAt: now,
		}
	}

	prompt, _ := Prompt(KindSales)
	ctx, cancel := context.WithTimeout(ctx, s.opts.AITimeout)
	defer cancel()

	started := time.Now()
	res, err := s.llm.GenerateInsight(ctx, summary, prompt)
	if err != nil {
		s.log.Warn().Err(err).Str("nif", summary.NIF).Msg("IA: análisis de ventas no disponible")
		return dto.AIAnalysisDTO{
			Kind:        dto.AnalysisKindError,
			Note:        "No se pudo generar el análisis de IA: " + err.Error(),
			GeneratedAt: now,
		}
	}
	s.log.Debug().
		Str("nif", summary.NIF).
		Int("tokens", res.TokensUsed).
		Dur("elapsed", time.Since(started)).
		Msg("IA: análisis de ventas generado")
	return dto.AIAnalysisDTO{
		Content:     res.Content,
		Kind:        dto.AnalysisKindAI,
		Note:        "Análisis generado automáticamente",
		Model:       res.Model,
		GeneratedAt: now,
	}
}
