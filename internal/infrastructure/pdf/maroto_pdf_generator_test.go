package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
)

func TestGenerateInvoicePDF_ConTextoYQR(t *testing.T) {
	g := NewMarotoPDFGenerator()
	inv := &entity.Invoice{
		Number:   "FT_2026_15",
		NIF:      "123456789",
		Branch:   "Lisboa",
		Date:     time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC),
		Time:     "09:15:00",
		Total:    decimal.NewNullDecimal(decimal.RequireFromString("12.50")),
		FullText: "CAFÉ CENTRAL\r\n\r\n5 x Café    12,50\nTOTAL       12,50",
		QRCode:   "A:123456789*B:999999990*C:PT*D:FT",
	}

	out, err := g.GenerateInvoicePDF(context.Background(), inv)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateInvoicePDF_SinTextoUsaLineas(t *testing.T) {
	g := NewMarotoPDFGenerator()
	inv := &entity.Invoice{
		Number: "FT_1",
		NIF:    "123456789",
		Items: []entity.InvoiceItem{
			{ProductName: "Pastel de nata", Quantity: 2, UnitPrice: decimal.RequireFromString("1.20")},
		},
	}

	out, err := g.GenerateInvoicePDF(context.Background(), inv)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestGenerateInvoicePDF_Nil(t *testing.T) {
	_, err := NewMarotoPDFGenerator().GenerateInvoicePDF(context.Background(), nil)
	assert.Error(t, err)
}

func TestFormatMoney(t *testing.T) {
	g := NewMarotoPDFGenerator()
	assert.Equal(t, "12.345,50 €", g.formatMoney(decimal.RequireFromString("12345.5")))
	assert.Equal(t, "0,00 €", g.formatMoney(decimal.Zero))
}

func TestSplitEvery(t *testing.T) {
	assert.Equal(t, []string{"ab", "cd", "e"}, splitEvery("abcde", 2))
	assert.Nil(t, splitEvery("", 3))
	assert.Equal(t, []string{"çã"}, splitEvery("çã", 5))
}
