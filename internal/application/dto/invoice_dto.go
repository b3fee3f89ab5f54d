package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItemDTO línea de factura en respuestas.
type InvoiceItemDTO struct {
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceDTO factura para GET /api/faturas.
type InvoiceDTO struct {
	ID        string           `json:"id"`
	Number    string           `json:"number"`
	NIF       string           `json:"nif"`
	Branch    string           `json:"branch,omitempty"`
	Date      string           `json:"date"`
	Time      string           `json:"time"`
	Total     *decimal.Decimal `json:"total"` // null si el total almacenado no es numérico
	ClientNIF string           `json:"client_nif,omitempty"`
	QRCode    string           `json:"qr_code,omitempty"`
	Items     []InvoiceItemDTO `json:"items"`
}

// InvoiceListDTO listado de facturas.
type InvoiceListDTO struct {
	NIF      string          `json:"nif"`
	Branch   string          `json:"branch,omitempty"`
	Period   *PeriodDTO      `json:"period,omitempty"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
	Invoices []InvoiceDTO    `json:"invoices"`
}

// IngestItemRequest línea de una factura a ingerir.
type IngestItemRequest struct {
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// IngestInvoiceRequest factura estructurada enviada por un integrador.
// Date en formato AAAA-MM-DD; Time en HH:MM o HH:MM:SS.
type IngestInvoiceRequest struct {
	Number    string              `json:"number"`
	NIF       string              `json:"nif"`
	Branch    string              `json:"branch"`
	Date      string              `json:"date"`
	Time      string              `json:"time"`
	Total     decimal.Decimal     `json:"total"`
	ClientNIF string              `json:"client_nif,omitempty"`
	FullText  string              `json:"full_text,omitempty"`
	QRCode    string              `json:"qr_code,omitempty"`
	Items     []IngestItemRequest `json:"items"`
}

// IngestRequest body de POST /api/faturas.
type IngestRequest struct {
	Invoices []IngestInvoiceRequest `json:"invoices"`
}

// IngestResultDTO resultado de la ingesta.
type IngestResultDTO struct {
	Received    int       `json:"received"`
	Inserted    int       `json:"inserted"`
	Duplicates  []string  `json:"duplicates,omitempty"` // números ya registrados
	Rejected    []string  `json:"rejected,omitempty"`   // "número: motivo"
	Businesses  int       `json:"businesses"`           // combinaciones NIF/filial invalidadas
	ProcessedAt time.Time `json:"processed_at"`
}
