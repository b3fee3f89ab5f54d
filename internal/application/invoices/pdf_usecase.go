package invoices

import (
	"context"
	"fmt"

	"github.com/jhoicas/faturas-analytics/internal/application/analytics"
	"github.com/jhoicas/faturas-analytics/internal/domain"
	"github.com/jhoicas/faturas-analytics/internal/domain/repository"
)

// PDFUseCase genera el PDF de una factura registrada.
type PDFUseCase struct {
	invoices  repository.InvoiceRepository
	generator InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando sus dependencias.
func NewPDFUseCase(invoices repository.InvoiceRepository, generator InvoicePDFGenerator) *PDFUseCase {
	return &PDFUseCase{invoices: invoices, generator: generator}
}

// DownloadPDF busca la factura por número y genera su PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe.
//   - domain.ErrForbidden        si la factura pertenece a otro NIF.
func (uc *PDFUseCase) DownloadPDF(ctx context.Context, nif, number string) (pdfBytes []byte, filename string, err error) {
	nif, err = analytics.ValidateNIF(nif)
	if err != nil {
		return nil, "", err
	}
	number = NormalizeNumber(number)
	if number == "" {
		return nil, "", fmt.Errorf("%w: número de factura obligatorio", domain.ErrInvalidInput)
	}

	// ── 1. Cargar factura ─────────────────────────────────────────────────────
	inv, err := uc.invoices.GetByNumber(ctx, number)
	if err != nil {
		return nil, "", fmt.Errorf("%w: obtener factura: %w", domain.ErrDataFetch, err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}
	if inv.NIF != nif {
		return nil, "", domain.ErrForbidden
	}

	// ── 2. Generar PDF ────────────────────────────────────────────────────────
	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, inv)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("fatura_%s.pdf", inv.Number), nil
}
