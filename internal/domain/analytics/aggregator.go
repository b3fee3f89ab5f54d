// Package analytics contiene el motor de comparación entre períodos:
// separación de facturas en dos buckets, estadísticas por bucket, tabla
// horaria comparativa, varianzas, mapa de calor y ranking de productos.
//
// Todas las funciones son puras: no guardan estado entre llamadas y no
// necesitan sincronización.
package analytics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
	"github.com/jhoicas/faturas-analytics/internal/domain/period"
)

// BucketStats acumula las métricas de un bucket (actual o anterior).
type BucketStats struct {
	Total decimal.Decimal
	Count int
	Items int64 // suma de cantidades
}

// AverageTicket devuelve Total/Count, o cero si el bucket está vacío.
func (b BucketStats) AverageTicket() decimal.Decimal {
	if b.Count == 0 {
		return decimal.Zero
	}
	return b.Total.Div(decimal.NewFromInt(int64(b.Count)))
}

func (b *BucketStats) add(inv *entity.Invoice) {
	b.Total = b.Total.Add(inv.Amount())
	b.Count++
	b.Items += inv.ItemCount()
}

// HourlyEntry es una fila de la tabla horaria comparativa.
type HourlyEntry struct {
	Hour          int
	CurrentCount  int
	CurrentVolume decimal.Decimal
	PriorCount    int
	PriorVolume   decimal.Decimal
}

// Label devuelve la hora con formato "HH:00".
func (h HourlyEntry) Label() string {
	return fmt.Sprintf("%02d:00", h.Hour)
}

// Aggregation es el resultado de una pasada sobre las facturas.
type Aggregation struct {
	Current BucketStats
	Prior   BucketStats
	Hourly  []HourlyEntry

	// Buckets crudos, en el orden de entrada, para el mapa de calor y el ranking.
	CurrentInvoices []entity.Invoice
	PriorInvoices   []entity.Invoice

	Skipped int // facturas mal formadas descartadas
}

// Aggregate clasifica cada factura en el bucket actual o anterior según su
// fecha y acumula estadísticas y la tabla horaria en una sola pasada.
// Las facturas fuera de ambas ventanas se ignoran; las mal formadas (sin
// fecha, sin hora válida o con total no numérico) se descartan.
func Aggregate(invoices []entity.Invoice, current, prior period.DateWindow) Aggregation {
	var (
		agg   Aggregation
		hours [24]HourlyEntry
		seen  [24]bool
	)
	for i := range invoices {
		inv := &invoices[i]
		if !inv.HasDate() || !inv.HasTotal() {
			agg.Skipped++
			continue
		}
		hour, ok := parseHour(inv.Time)
		if !ok {
			agg.Skipped++
			continue
		}

		h := &hours[hour]
		switch {
		case current.Contains(inv.Date):
			agg.Current.add(inv)
			agg.CurrentInvoices = append(agg.CurrentInvoices, *inv)
			h.CurrentCount++
			h.CurrentVolume = h.CurrentVolume.Add(inv.Amount())
		case prior.Contains(inv.Date):
			agg.Prior.add(inv)
			agg.PriorInvoices = append(agg.PriorInvoices, *inv)
			h.PriorCount++
			h.PriorVolume = h.PriorVolume.Add(inv.Amount())
		default:
			continue
		}
		seen[hour] = true
	}

	for hour := range hours {
		if !seen[hour] {
			continue
		}
		e := hours[hour]
		e.Hour = hour
		agg.Hourly = append(agg.Hourly, e)
	}
	return agg
}

// parseHour acepta "10", "10:30" y "10:30:00".
func parseHour(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if idx := strings.IndexByte(raw, ':'); idx >= 0 {
		raw = raw[:idx]
	}
	h, err := strconv.Atoi(raw)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}
