package invoices

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/faturas-analytics/internal/application/analytics"
	"github.com/jhoicas/faturas-analytics/internal/application/dto"
	"github.com/jhoicas/faturas-analytics/internal/domain"
	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
	"github.com/jhoicas/faturas-analytics/internal/domain/period"
	"github.com/jhoicas/faturas-analytics/internal/domain/repository"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// ListUseCase consulta el ledger de facturas sin pasar por el caché de analítica.
type ListUseCase struct {
	invoices repository.InvoiceRepository
	resolver *period.Resolver
}

// NewListUseCase construye el caso de uso.
func NewListUseCase(invoices repository.InvoiceRepository, resolver *period.Resolver) *ListUseCase {
	return &ListUseCase{invoices: invoices, resolver: resolver}
}

// ListByPeriod devuelve las facturas de la ventana actual del período,
// más recientes primero. Sin facturas devuelve domain.ErrNotFound.
func (uc *ListUseCase) ListByPeriod(ctx context.Context, q analytics.Query) (*dto.InvoiceListDTO, error) {
	sel, err := uc.resolver.Resolve(q.Code)
	if err != nil {
		return nil, err
	}
	list, err := uc.invoices.FetchByDateRange(ctx, q.NIF, sel.Current.Start, sel.Current.End, q.Branch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDataFetch, err)
	}
	if len(list) == 0 {
		return nil, domain.ErrNotFound
	}
	sortNewestFirst(list)

	p := analytics.PeriodDTOFrom(sel)
	out := toListDTO(q.NIF, q.Branch, list)
	out.Period = &p
	return out, nil
}

// ListAll devuelve las últimas facturas del negocio. limit <= 0 usa el valor por defecto.
func (uc *ListUseCase) ListAll(ctx context.Context, nif string, limit int) (*dto.InvoiceListDTO, error) {
	nif, err := analytics.ValidateNIF(nif)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	list, err := uc.invoices.ListByNIF(ctx, nif, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDataFetch, err)
	}
	return toListDTO(nif, "", list), nil
}

func sortNewestFirst(list []entity.Invoice) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].Time > list[j].Time
	})
}

func toListDTO(nif, branch string, list []entity.Invoice) *dto.InvoiceListDTO {
	out := &dto.InvoiceListDTO{
		NIF:      nif,
		Branch:   branch,
		Count:    len(list),
		Total:    decimal.Zero,
		Invoices: make([]dto.InvoiceDTO, 0, len(list)),
	}
	for i := range list {
		inv := &list[i]
		out.Total = out.Total.Add(inv.Amount())
		out.Invoices = append(out.Invoices, toInvoiceDTO(inv))
	}
	out.Total = out.Total.Round(2)
	return out
}

func toInvoiceDTO(inv *entity.Invoice) dto.InvoiceDTO {
	d := dto.InvoiceDTO{
		ID:        inv.ID,
		Number:    inv.Number,
		NIF:       inv.NIF,
		Branch:    inv.Branch,
		Time:      inv.Time,
		ClientNIF: inv.ClientNIF,
		QRCode:    inv.QRCode,
		Items:     make([]dto.InvoiceItemDTO, 0, len(inv.Items)),
	}
	if inv.HasDate() {
		d.Date = inv.Date.Format(period.DateLayout)
	}
	if inv.HasTotal() {
		t := inv.Total.Decimal
		d.Total = &t
	}
	for _, it := range inv.Items {
		d.Items = append(d.Items, dto.InvoiceItemDTO{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}
	return d
}
