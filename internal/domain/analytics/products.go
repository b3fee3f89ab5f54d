package analytics

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
)

// ProductAggregate resume las ventas de un producto en un bucket.
type ProductAggregate struct {
	Name     string
	Quantity int64
	Amount   decimal.Decimal // Σ cantidad × precio unitario
	Share    decimal.Decimal // % del monto total del bucket; 0 si el total es 0
}

// RankProducts agrupa las líneas por nombre de producto y ordena por monto
// descendente. Los empates conservan el orden de primera aparición.
// Las líneas sin nombre o con cantidad/precio negativos se descartan.
func RankProducts(invoices []entity.Invoice) []ProductAggregate {
	idx := make(map[string]int)
	out := make([]ProductAggregate, 0)
	grand := decimal.Zero

	for i := range invoices {
		for _, it := range invoices[i].Items {
			if !it.Valid() {
				continue
			}
			name := strings.TrimSpace(it.ProductName)
			pos, ok := idx[name]
			if !ok {
				pos = len(out)
				idx[name] = pos
				out = append(out, ProductAggregate{Name: name})
			}
			amount := it.Amount()
			out[pos].Quantity += it.Quantity
			out[pos].Amount = out[pos].Amount.Add(amount)
			grand = grand.Add(amount)
		}
	}

	for i := range out {
		out[i].Share = decimal.Zero
		if grand.IsPositive() {
			out[i].Share = out[i].Amount.Div(grand).Mul(hundred)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}

// TotalAmount suma los montos de un ranking.
func TotalAmount(products []ProductAggregate) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Amount)
	}
	return total
}
