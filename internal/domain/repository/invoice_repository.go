package repository

import (
	"context"
	"time"

	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
)

// InvoiceRepository define el puerto de lectura/escritura del ledger de facturas.
// La implementación vive en infrastructure.
type InvoiceRepository interface {
	// FetchByDateRange devuelve las facturas del NIF cuya fecha está en
	// [start, end] (ambos inclusivos), con sus líneas. branch vacío = todas
	// las filiales. Sin resultados devuelve un slice vacío, no un error.
	FetchByDateRange(ctx context.Context, nif string, start, end time.Time, branch string) ([]entity.Invoice, error)

	// ListByNIF devuelve las últimas facturas del NIF (más recientes primero), sin líneas.
	ListByNIF(ctx context.Context, nif string, limit int) ([]entity.Invoice, error)

	// GetByNumber devuelve la factura por número o nil si no existe.
	GetByNumber(ctx context.Context, number string) (*entity.Invoice, error)

	// ListBranches devuelve las filiales distintas registradas para el NIF.
	ListBranches(ctx context.Context, nif string) ([]string, error)

	// Create persiste cabecera y líneas. Número repetido → domain.ErrDuplicate.
	Create(ctx context.Context, invoice *entity.Invoice) error
}
