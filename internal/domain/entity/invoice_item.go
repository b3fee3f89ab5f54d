package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// InvoiceItem representa una línea de una factura.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	ProductName string // clave de agrupación; no es única entre facturas
	Quantity    int64
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// Valid informa si la línea puede entrar en el ranking de productos.
func (it InvoiceItem) Valid() bool {
	return strings.TrimSpace(it.ProductName) != "" &&
		it.Quantity >= 0 &&
		!it.UnitPrice.IsNegative()
}

// Amount es cantidad × precio unitario.
func (it InvoiceItem) Amount() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
}
