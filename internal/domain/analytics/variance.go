package analytics

import "github.com/shopspring/decimal"

// Trend es la dirección cualitativa de una comparación.
type Trend string

const (
	TrendUp   Trend = "UP"
	TrendDown Trend = "DOWN"
	TrendFlat Trend = "FLAT"
)

var hundred = decimal.NewFromInt(100)

// Variance compara una métrica entre el período actual y el anterior.
// Los valores no se redondean aquí; el redondeo es de presentación.
type Variance struct {
	Current decimal.Decimal
	Prior   decimal.Decimal
	Delta   decimal.Decimal
	Percent decimal.Decimal // 0 cuando Prior es 0
	Trend   Trend
}

// Compare calcula delta, porcentaje y tendencia. Es total sobre cualquier
// entrada: con prior = 0 el porcentaje es 0.
func Compare(current, prior decimal.Decimal) Variance {
	v := Variance{
		Current: current,
		Prior:   prior,
		Delta:   current.Sub(prior),
		Percent: decimal.Zero,
		Trend:   TrendFlat,
	}
	if !prior.IsZero() {
		v.Percent = v.Delta.Div(prior).Mul(hundred)
	}
	switch current.Cmp(prior) {
	case 1:
		v.Trend = TrendUp
	case -1:
		v.Trend = TrendDown
	}
	return v
}

// CompareInt es Compare para conteos.
func CompareInt(current, prior int64) Variance {
	return Compare(decimal.NewFromInt(current), decimal.NewFromInt(prior))
}
