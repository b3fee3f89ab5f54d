// Package pdf genera la copia imprimible de una factura de punto de venta.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: NIF + Filial        │  N° Fatura + Fecha/Hora       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CUERPO: texto original del ticket (monoespaciado)           │
//	│          o tabla Cant | Producto | P.Unit | Total            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL                                                       │
//	│  QR del documento                                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/faturas-analytics/internal/application/invoices"
	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
)

var _ invoices.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// maxLineChars ancho del ticket antes de partir la línea.
const maxLineChars = 90

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa invoices.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	printer *message.Printer
}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator {
	return &MarotoPDFGenerator{printer: message.NewPrinter(language.Spanish)}
}

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, invoice *entity.Invoice) ([]byte, error) {
	if invoice == nil {
		return nil, fmt.Errorf("pdf: factura nil")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: fontfamily.Helvetica, Size: 9}).
		WithTitle("Fatura "+invoice.Number, true).
		WithAuthor(invoice.NIF, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	if strings.TrimSpace(invoice.FullText) != "" {
		m.AddRows(bodyRows(invoice.FullText)...)
	} else {
		m.AddRows(tableHeaderRow())
		m.AddRows(g.tableDetailRows(invoice.Items)...)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalRow(invoice))
	m.AddRows(qrRows(invoice)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: NIF + filial (izq) y N° + fecha (der).
func headerRow(invoice *entity.Invoice) core.Row {
	fecha := "—"
	if invoice.HasDate() {
		fecha = invoice.Date.Format("02/01/2006")
	}
	if invoice.Time != "" {
		fecha += " " + invoice.Time
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New("NIF "+invoice.NIF, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Filial: "+nonEmpty(invoice.Branch, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("FATURA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// bodyRows: el ticket original, una fila por línea, en fuente monoespaciada.
func bodyRows(fullText string) []core.Row {
	var rows []core.Row
	for _, raw := range strings.Split(strings.ReplaceAll(fullText, "\r\n", "\n"), "\n") {
		chunks := splitEvery(raw, maxLineChars)
		if len(chunks) == 0 {
			rows = append(rows, row.New(3))
			continue
		}
		for _, chunk := range chunks {
			rows = append(rows, row.New(4).Add(col.New(12).Add(
				text.New(chunk, props.Text{Family: fontfamily.Courier, Size: 8, Top: 0.5}),
			)))
		}
	}
	return rows
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Cant.", 2, align.Center),
		h("Producto", 6, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

// tableDetailRows: una fila por línea de la factura.
func (g *MarotoPDFGenerator) tableDetailRows(items []entity.InvoiceItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		lineTotal := it.LineTotal
		if lineTotal.IsZero() {
			lineTotal = it.Amount()
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(
				fmt.Sprintf("%d", it.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(6).Add(text.New(
				it.ProductName,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				g.formatMoney(it.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				g.formatMoney(lineTotal),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalRow: total alineado a la derecha; "—" cuando el total no es numérico.
func (g *MarotoPDFGenerator) totalRow(invoice *entity.Invoice) core.Row {
	total := "—"
	if invoice.HasTotal() {
		total = g.formatMoney(invoice.Total.Decimal)
	}
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New(total, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

// qrRows: QR del documento y NIF del cliente, si existen.
func qrRows(invoice *entity.Invoice) []core.Row {
	rows := []core.Row{row.New(3)}
	if invoice.ClientNIF != "" {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("NIF cliente: "+invoice.ClientNIF, props.Text{Size: 8, Color: colorGray, Top: 1}),
		)))
	}
	if invoice.QRCode == "" {
		return rows
	}
	return append(rows, row.New(45).Add(
		col.New(4).Add(code.NewQr(invoice.QRCode, props.Rect{
			Percent: 95,
			Center:  true,
		})),
		col.New(8).Add(
			text.New("Código QR del documento", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
		),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney formatea con separador de miles y dos decimales: 12345.5 → "12.345,50 €".
func (g *MarotoPDFGenerator) formatMoney(d decimal.Decimal) string {
	return g.printer.Sprintf("%.2f €", d.Round(2).InexactFloat64())
}

// splitEvery divide s en trozos de max n runas.
func splitEvery(s string, n int) []string {
	r := []rune(s)
	var parts []string
	for len(r) > n {
		parts = append(parts, string(r[:n]))
		r = r[n:]
	}
	if len(r) > 0 {
		parts = append(parts, string(r))
	}
	return parts
}
