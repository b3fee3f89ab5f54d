package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice representa una factura de punto de venta tal como la devuelve el
// repositorio. Es de solo lectura para el motor de analítica.
type Invoice struct {
	ID        string
	Number    string // número de factura, único en todo el ledger
	NIF       string // NIF del negocio emisor
	Branch    string // filial; "" cuando el negocio no la informa
	Date      time.Time
	Time      string // "HH:MM" o "HH:MM:SS"; "" si falta
	Total     decimal.NullDecimal
	ClientNIF string
	FullText  string // cuerpo imprimible de la factura
	QRCode    string
	Items     []InvoiceItem
	CreatedAt time.Time
}

// HasDate informa si la factura trae fecha.
func (i *Invoice) HasDate() bool { return !i.Date.IsZero() }

// HasTotal informa si el total es numérico.
func (i *Invoice) HasTotal() bool { return i.Total.Valid }

// Amount devuelve el total o cero cuando no es válido.
func (i *Invoice) Amount() decimal.Decimal {
	if !i.Total.Valid {
		return decimal.Zero
	}
	return i.Total.Decimal
}

// ItemCount suma las cantidades de las líneas válidas.
func (i *Invoice) ItemCount() int64 {
	var n int64
	for _, it := range i.Items {
		if it.Quantity > 0 {
			n += it.Quantity
		}
	}
	return n
}

// BranchLabel devuelve la filial o "Sin filial".
func (i *Invoice) BranchLabel() string {
	if strings.TrimSpace(i.Branch) == "" {
		return "Sin filial"
	}
	return i.Branch
}
