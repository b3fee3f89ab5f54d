package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/faturas-analytics/internal/application/dto"
	domanalytics "github.com/jhoicas/faturas-analytics/internal/domain/analytics"
	"github.com/jhoicas/faturas-analytics/internal/domain/period"
)

const (
	colorUp   = "#28a745"
	colorDown = "#dc3545"
)

var (
	mondayFirstNames = [...]string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}
	sundayFirstNames = [...]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}
)

// weekdayName traduce el índice 0–6 según el orden usado por el mapa de calor.
func weekdayName(order domanalytics.WeekdayOrder, idx int) string {
	if idx < 0 || idx > 6 {
		return ""
	}
	if order == domanalytics.SundayFirst {
		return sundayFirstNames[idx]
	}
	return mondayFirstNames[idx]
}

// PeriodDTOFrom describe la selección con fechas AAAA-MM-DD.
func PeriodDTOFrom(sel period.Selection) dto.PeriodDTO {
	return dto.PeriodDTO{
		Code:         int(sel.Code),
		Name:         sel.Code.Name(),
		CurrentStart: sel.Current.Start.Format(period.DateLayout),
		CurrentEnd:   sel.Current.End.Format(period.DateLayout),
		PriorStart:   sel.Prior.Start.Format(period.DateLayout),
		PriorEnd:     sel.Prior.End.Format(period.DateLayout),
		CurrentDays:  sel.Current.Days(),
		PriorDays:    sel.Prior.Days(),
	}
}

// toVarianceDTO redondea a 2 decimales solo para presentación.
func toVarianceDTO(v domanalytics.Variance) dto.VarianceDTO {
	pct := v.Percent.Round(2)
	label := pct.StringFixed(1) + "%"
	if !pct.IsNegative() {
		label = "+" + label
	}
	color := colorUp
	if v.Trend == domanalytics.TrendDown {
		color = colorDown
	}
	return dto.VarianceDTO{
		Current: v.Current.Round(2),
		Prior:   v.Prior.Round(2),
		Delta:   v.Delta.Round(2),
		Percent: pct,
		Trend:   string(v.Trend),
		Label:   label,
		Color:   color,
	}
}

func toMetricsDTO(agg domanalytics.Aggregation) dto.MetricsDTO {
	cur, pri := agg.Current, agg.Prior
	return dto.MetricsDTO{
		TotalSales:    toVarianceDTO(domanalytics.Compare(cur.Total, pri.Total)),
		Receipts:      toVarianceDTO(domanalytics.CompareInt(int64(cur.Count), int64(pri.Count))),
		ItemsSold:     toVarianceDTO(domanalytics.CompareInt(cur.Items, pri.Items)),
		AverageTicket: toVarianceDTO(domanalytics.Compare(cur.AverageTicket(), pri.AverageTicket())),
	}
}

func toHourlyDTO(rows []domanalytics.HourlyEntry) []dto.HourlyComparisonDTO {
	out := make([]dto.HourlyComparisonDTO, 0, len(rows))
	for _, h := range rows {
		out = append(out, dto.HourlyComparisonDTO{
			Hour:          h.Label(),
			HourNum:       h.Hour,
			CurrentVolume: h.CurrentVolume.Round(2),
			CurrentCount:  h.CurrentCount,
			PriorVolume:   h.PriorVolume.Round(2),
			PriorCount:    h.PriorCount,
		})
	}
	return out
}

func toProductDTOs(ranked []domanalytics.ProductAggregate, limit int) []dto.ProductRankDTO {
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]dto.ProductRankDTO, 0, len(ranked))
	for i, p := range ranked {
		out = append(out, dto.ProductRankDTO{
			Rank:     i + 1,
			Name:     p.Name,
			Quantity: p.Quantity,
			Amount:   p.Amount.Round(2),
			SharePct: p.Share.Round(2),
		})
	}
	return out
}

func toCellDTO(order domanalytics.WeekdayOrder, c domanalytics.HeatmapCell) dto.HeatmapCellDTO {
	return dto.HeatmapCellDTO{
		Hour:          domanalytics.HourlyEntry{Hour: c.Hour}.Label(),
		HourNum:       c.Hour,
		Weekday:       weekdayName(order, c.Weekday),
		WeekdayNum:    c.Weekday,
		Volume:        c.Volume.Round(2),
		InvoiceCount:  c.Count,
		AverageTicket: c.AverageTicket().Round(2),
	}
}

func toCellDTOs(order domanalytics.WeekdayOrder, cells []domanalytics.HeatmapCell) []dto.HeatmapCellDTO {
	out := make([]dto.HeatmapCellDTO, 0, len(cells))
	for _, c := range cells {
		out = append(out, toCellDTO(order, c))
	}
	return out
}

func toHeatmapDTO(hm domanalytics.Heatmap) dto.HeatmapDTO {
	out := dto.HeatmapDTO{
		Cells:       toCellDTOs(hm.Order, hm.Cells),
		TotalVolume: hm.TotalVolume.Round(2),
		TotalCount:  hm.TotalCount,
	}
	if hm.PeakByVolume != nil {
		c := toCellDTO(hm.Order, *hm.PeakByVolume)
		out.PeakByVolume = &c
	}
	if hm.PeakByCount != nil {
		c := toCellDTO(hm.Order, *hm.PeakByCount)
		out.PeakByCount = &c
	}
	return out
}

func toPeriodTotals(sel period.Selection, w period.DateWindow, b domanalytics.BucketStats) dto.PeriodTotalsDTO {
	return dto.PeriodTotalsDTO{
		Name:          sel.Code.Name(),
		Start:         w.Start.Format(period.DateLayout),
		End:           w.End.Format(period.DateLayout),
		Days:          w.Days(),
		TotalVolume:   b.Total.Round(2),
		TotalInvoices: b.Count,
		TotalItems:    b.Items,
		AverageTicket: b.AverageTicket().Round(2),
	}
}

// share devuelve part/total×100 redondeado, o cero con total no positivo.
func share(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
}
