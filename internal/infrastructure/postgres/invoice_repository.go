package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/faturas-analytics/internal/domain"
	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
	"github.com/jhoicas/faturas-analytics/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	i.id, i.number, i.nif, i.branch, i.date, i.time, i.total,
	i.client_nif, i.full_text, i.qr_code, i.created_at`

// FetchByDateRange trae cabeceras y líneas con un único LEFT JOIN y las
// agrupa conservando el orden de la consulta.
func (r *InvoiceRepo) FetchByDateRange(
	ctx context.Context,
	nif string,
	start, end time.Time,
	branch string,
) ([]entity.Invoice, error) {
	const query = `
	SELECT` + invoiceColumns + `,
	       it.id, it.product_name, it.quantity, it.unit_price, it.line_total
	FROM invoices i
	LEFT JOIN invoice_items it ON it.invoice_id = i.id
	WHERE i.nif = $1
	  AND i.date BETWEEN $2 AND $3
	  AND ($4 = '' OR i.branch = $4)
	ORDER BY i.date, i.time, i.id, it.id`

	rows, err := r.q.Query(ctx, query, nif, start, end, branch)
	if err != nil {
		return nil, fmt.Errorf("invoices: fetch range: %w", err)
	}
	defer rows.Close()

	out := []entity.Invoice{}
	index := map[string]int{}
	for rows.Next() {
		var (
			inv       entity.Invoice
			itemID    *string
			itemName  *string
			itemQty   *int64
			itemPrice decimal.NullDecimal
			itemTotal decimal.NullDecimal
		)
		dest := append(invoiceDest(&inv), &itemID, &itemName, &itemQty, &itemPrice, &itemTotal)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("invoices: scan: %w", err)
		}
		pos, seen := index[inv.ID]
		if !seen {
			pos = len(out)
			index[inv.ID] = pos
			out = append(out, inv)
		}
		if itemID == nil {
			continue
		}
		it := entity.InvoiceItem{
			ID:          *itemID,
			InvoiceID:   inv.ID,
			ProductName: deref(itemName),
			UnitPrice:   itemPrice.Decimal,
			LineTotal:   itemTotal.Decimal,
		}
		if itemQty != nil {
			it.Quantity = *itemQty
		}
		out[pos].Items = append(out[pos].Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("invoices: rows: %w", err)
	}
	return out, nil
}

// ListByNIF devuelve las cabeceras más recientes, sin líneas.
func (r *InvoiceRepo) ListByNIF(ctx context.Context, nif string, limit int) ([]entity.Invoice, error) {
	const query = `
	SELECT` + invoiceColumns + `
	FROM invoices i
	WHERE i.nif = $1
	ORDER BY i.date DESC NULLS LAST, i.time DESC NULLS LAST
	LIMIT $2`

	rows, err := r.q.Query(ctx, query, nif, limit)
	if err != nil {
		return nil, fmt.Errorf("invoices: list: %w", err)
	}
	defer rows.Close()

	out := []entity.Invoice{}
	for rows.Next() {
		var inv entity.Invoice
		if err := rows.Scan(invoiceDest(&inv)...); err != nil {
			return nil, fmt.Errorf("invoices: scan: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// GetByNumber devuelve la factura con sus líneas o nil si no existe.
func (r *InvoiceRepo) GetByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	query := `SELECT` + invoiceColumns + ` FROM invoices i WHERE i.number = $1`
	var inv entity.Invoice
	err := r.q.QueryRow(ctx, query, number).Scan(invoiceDest(&inv)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invoices: get by number: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, product_name, quantity, unit_price, line_total
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY id`, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("invoices: items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it := entity.InvoiceItem{InvoiceID: inv.ID}
		if err := rows.Scan(&it.ID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("invoices: scan item: %w", err)
		}
		inv.Items = append(inv.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("invoices: items rows: %w", err)
	}
	return &inv, nil
}

// ListBranches devuelve las filiales distintas del NIF, ordenadas.
func (r *InvoiceRepo) ListBranches(ctx context.Context, nif string) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT DISTINCT branch FROM invoices
		WHERE nif = $1 AND branch <> ''
		ORDER BY branch`, nif)
	if err != nil {
		return nil, fmt.Errorf("invoices: branches: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("invoices: scan branch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Create persiste cabecera y líneas. Las líneas viajan en un único batch.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now().UTC()
	}
	var total *decimal.Decimal
	if invoice.Total.Valid {
		total = &invoice.Total.Decimal
	}
	var date *time.Time
	if invoice.HasDate() {
		date = &invoice.Date
	}

	query := `
		INSERT INTO invoices (id, number, nif, branch, date, time, total, client_nif, full_text, qr_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.Number, invoice.NIF, invoice.Branch, date, nullIfEmpty(invoice.Time), total,
		nullIfEmpty(invoice.ClientNIF), nullIfEmpty(invoice.FullText), nullIfEmpty(invoice.QRCode),
		invoice.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: factura %s", domain.ErrDuplicate, invoice.Number)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	if len(invoice.Items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range invoice.Items {
		it := &invoice.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.InvoiceID = invoice.ID
		batch.Queue(`
			INSERT INTO invoice_items (id, invoice_id, product_name, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, it.InvoiceID, it.ProductName, it.Quantity, it.UnitPrice, it.LineTotal,
		)
	}
	if err := r.q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert invoice items: %w", err)
	}
	return nil
}

// invoiceDest devuelve los destinos de Scan para invoiceColumns. Los campos
// opcionales se resuelven cuando Scan termina mediante scanners propios.
func invoiceDest(inv *entity.Invoice) []any {
	return []any{
		&inv.ID,
		&inv.Number,
		&inv.NIF,
		&inv.Branch,
		nullableTime{&inv.Date},
		nullableString{&inv.Time},
		&inv.Total,
		nullableString{&inv.ClientNIF},
		nullableString{&inv.FullText},
		nullableString{&inv.QRCode},
		&inv.CreatedAt,
	}
}

// nullableString escribe "" cuando la columna es NULL.
type nullableString struct{ dst *string }

func (n nullableString) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*n.dst = ""
	case string:
		*n.dst = v
	case []byte:
		*n.dst = string(v)
	default:
		return fmt.Errorf("nullableString: tipo %T", src)
	}
	return nil
}

// nullableTime deja el zero value cuando la columna es NULL.
type nullableTime struct{ dst *time.Time }

func (n nullableTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*n.dst = time.Time{}
	case time.Time:
		*n.dst = v
	default:
		return fmt.Errorf("nullableTime: tipo %T", src)
	}
	return nil
}
