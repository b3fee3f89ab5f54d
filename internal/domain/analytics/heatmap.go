package analytics

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
)

// WeekdayOrder fija la numeración de los días de la semana.
type WeekdayOrder int

const (
	// MondayFirst: lunes = 0 … domingo = 6.
	MondayFirst WeekdayOrder = iota
	// SundayFirst: domingo = 0 … sábado = 6.
	SundayFirst
)

// Index convierte un time.Weekday al índice 0–6 del orden.
func (o WeekdayOrder) Index(d time.Weekday) int {
	if o == SundayFirst {
		return int(d)
	}
	return (int(d) + 6) % 7
}

const (
	hoursPerDay = 24
	daysPerWeek = 7
)

// HeatmapCell es una celda hora × día de la semana.
type HeatmapCell struct {
	Hour    int
	Weekday int
	Volume  decimal.Decimal
	Count   int
}

// AverageTicket devuelve Volume/Count, o cero para celdas vacías.
func (c HeatmapCell) AverageTicket() decimal.Decimal {
	if c.Count == 0 {
		return decimal.Zero
	}
	return c.Volume.Div(decimal.NewFromInt(int64(c.Count)))
}

// Heatmap es el resultado de BuildHeatmap.
type Heatmap struct {
	Order        WeekdayOrder
	Cells        []HeatmapCell // solo celdas con Count > 0, hora mayor, día menor
	PeakByVolume *HeatmapCell  // nil si no hay celdas
	PeakByCount  *HeatmapCell
	TotalVolume  decimal.Decimal
	TotalCount   int
}

// BuildHeatmap acumula volumen y cantidad de facturas en una grilla 24×7.
// Se descartan las facturas sin fecha, sin total numérico o cuya hora no
// contiene ':'. Cada llamada usa su propia grilla.
func BuildHeatmap(invoices []entity.Invoice, order WeekdayOrder) Heatmap {
	var grid [hoursPerDay][daysPerWeek]HeatmapCell

	for i := range invoices {
		inv := &invoices[i]
		if !inv.HasDate() || !inv.HasTotal() {
			continue
		}
		hour, ok := heatmapHour(inv.Time)
		if !ok {
			continue
		}
		wd := order.Index(inv.Date.Weekday())
		cell := &grid[hour][wd]
		cell.Volume = cell.Volume.Add(inv.Amount())
		cell.Count++
	}

	hm := Heatmap{Order: order}
	var peakVol, peakCnt int = -1, -1
	for h := 0; h < hoursPerDay; h++ {
		for d := 0; d < daysPerWeek; d++ {
			cell := grid[h][d]
			if cell.Count == 0 {
				continue
			}
			cell.Hour, cell.Weekday = h, d
			hm.Cells = append(hm.Cells, cell)
			hm.TotalVolume = hm.TotalVolume.Add(cell.Volume)
			hm.TotalCount += cell.Count

			last := len(hm.Cells) - 1
			if peakVol < 0 || cell.Volume.GreaterThan(hm.Cells[peakVol].Volume) {
				peakVol = last
			}
			if peakCnt < 0 || cell.Count > hm.Cells[peakCnt].Count {
				peakCnt = last
			}
		}
	}
	if peakVol >= 0 {
		pv, pc := hm.Cells[peakVol], hm.Cells[peakCnt]
		hm.PeakByVolume, hm.PeakByCount = &pv, &pc
	}
	return hm
}

// Top devuelve las n celdas de mayor volumen (empates en orden de iteración).
func (h Heatmap) Top(n int) []HeatmapCell {
	out := make([]HeatmapCell, len(h.Cells))
	copy(out, h.Cells)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Volume.GreaterThan(out[j].Volume)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// heatmapHour toma los caracteres anteriores a ':'; sin ':' la hora no es válida.
func heatmapHour(raw string) (int, bool) {
	idx := strings.IndexByte(raw, ':')
	if idx <= 0 {
		return 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(raw[:idx]))
	if err != nil || h < 0 || h >= hoursPerDay {
		return 0, false
	}
	return h, true
}
