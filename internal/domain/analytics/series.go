package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
	"github.com/jhoicas/faturas-analytics/internal/domain/period"
)

// DailyTotal es el volumen de un día.
type DailyTotal struct {
	Date   string // AAAA-MM-DD
	Volume decimal.Decimal
	Count  int
}

// DailyTotals agrupa por día dentro de la ventana, con ceros para los días sin ventas.
func DailyTotals(invoices []entity.Invoice, window period.DateWindow) []DailyTotal {
	byDay := make(map[string]*DailyTotal, window.Days())
	out := make([]DailyTotal, 0, window.Days())
	window.Each(func(d time.Time) {
		out = append(out, DailyTotal{Date: d.Format(period.DateLayout)})
	})
	for i := range out {
		byDay[out[i].Date] = &out[i]
	}
	for i := range invoices {
		inv := &invoices[i]
		if !inv.HasDate() || !inv.HasTotal() || !window.Contains(inv.Date) {
			continue
		}
		d := byDay[period.Civil(inv.Date).Format(period.DateLayout)]
		d.Volume = d.Volume.Add(inv.Amount())
		d.Count++
	}
	return out
}

// BranchTotal es el volumen de una filial.
type BranchTotal struct {
	Branch string
	Volume decimal.Decimal
	Count  int
}

// BranchTotals agrupa por filial, de mayor a menor volumen.
func BranchTotals(invoices []entity.Invoice) []BranchTotal {
	idx := make(map[string]int)
	var out []BranchTotal
	for i := range invoices {
		inv := &invoices[i]
		if !inv.HasTotal() {
			continue
		}
		label := inv.BranchLabel()
		pos, ok := idx[label]
		if !ok {
			pos = len(out)
			idx[label] = pos
			out = append(out, BranchTotal{Branch: label})
		}
		out[pos].Volume = out[pos].Volume.Add(inv.Amount())
		out[pos].Count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Volume.GreaterThan(out[j].Volume)
	})
	return out
}
