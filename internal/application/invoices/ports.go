package invoices

import (
	"context"

	"github.com/jhoicas/faturas-analytics/internal/application/dto"
	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
	"github.com/jhoicas/faturas-analytics/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con el repositorio de facturas.
// Si fn devuelve error, el runner hace rollback.
type TxRunner interface {
	RunInvoices(ctx context.Context, fn func(invoices repository.InvoiceRepository) error) error
}

// InvoicePDFGenerator genera la representación imprimible de una factura.
// La implementación vive en infrastructure/pdf (Maroto).
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *entity.Invoice) ([]byte, error)
}

// CacheRefresher invalida las vistas de un negocio y encola su recálculo.
type CacheRefresher interface {
	Clear(ctx context.Context, nif, branch string) (*dto.CacheClearDTO, error)
}
