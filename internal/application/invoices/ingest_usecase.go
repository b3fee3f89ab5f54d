package invoices

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/faturas-analytics/internal/application/analytics"
	"github.com/jhoicas/faturas-analytics/internal/application/dto"
	"github.com/jhoicas/faturas-analytics/internal/domain"
	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
	"github.com/jhoicas/faturas-analytics/internal/domain/period"
	"github.com/jhoicas/faturas-analytics/internal/domain/repository"
)

// MaxIngestBatch facturas aceptadas por petición.
const MaxIngestBatch = 500

// NormalizeNumber reemplaza '/' por '_' y elimina espacios, para que el número
// sirva como nombre de archivo y como clave.
func NormalizeNumber(number string) string {
	number = strings.ReplaceAll(number, "/", "_")
	return strings.Join(strings.Fields(number), "")
}

// IngestUseCase registra facturas estructuradas y refresca el caché de los
// negocios afectados.
type IngestUseCase struct {
	tx        TxRunner
	refresher CacheRefresher // nil = sin invalidación
	log       zerolog.Logger
	now       func() time.Time
}

// NewIngestUseCase construye el caso de uso.
func NewIngestUseCase(tx TxRunner, refresher CacheRefresher, log zerolog.Logger) *IngestUseCase {
	return &IngestUseCase{tx: tx, refresher: refresher, log: log, now: time.Now}
}

type scope struct{ nif, branch string }

// Ingest valida y persiste cada factura en su propia transacción (cabecera +
// líneas). Los números repetidos se informan en Duplicates, las facturas
// inválidas en Rejected. Un fallo de base de datos corta la ingesta, pero los
// negocios ya escritos se invalidan igualmente.
func (uc *IngestUseCase) Ingest(ctx context.Context, reqs []dto.IngestInvoiceRequest) (*dto.IngestResultDTO, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: no se recibieron facturas", domain.ErrInvalidInput)
	}
	if len(reqs) > MaxIngestBatch {
		return nil, fmt.Errorf("%w: máximo %d facturas por petición", domain.ErrInvalidInput, MaxIngestBatch)
	}

	now := uc.now().UTC()
	res := &dto.IngestResultDTO{Received: len(reqs)}
	touched := map[scope]struct{}{}

	var persistErr error
	for _, req := range reqs {
		inv, err := toEntity(req, now)
		if err != nil {
			res.Rejected = append(res.Rejected, fmt.Sprintf("%s: %v", label(req.Number), err))
			continue
		}
		err = uc.tx.RunInvoices(ctx, func(repo repository.InvoiceRepository) error {
			return repo.Create(ctx, inv)
		})
		if errors.Is(err, domain.ErrDuplicate) {
			res.Duplicates = append(res.Duplicates, inv.Number)
			continue
		}
		if err != nil {
			persistErr = fmt.Errorf("ingest: persistir %s: %w", inv.Number, err)
			break
		}
		res.Inserted++
		touched[scope{inv.NIF, inv.Branch}] = struct{}{}
	}

	res.Businesses = len(touched)
	uc.refresh(ctx, touched)
	res.ProcessedAt = now

	uc.log.Info().
		Int("received", res.Received).
		Int("inserted", res.Inserted).
		Int("duplicates", len(res.Duplicates)).
		Int("rejected", len(res.Rejected)).
		Msg("ingesta de facturas")

	if persistErr != nil {
		return res, persistErr
	}
	return res, nil
}

func (uc *IngestUseCase) refresh(ctx context.Context, touched map[scope]struct{}) {
	if uc.refresher == nil {
		return
	}
	scopes := make([]scope, 0, len(touched))
	for s := range touched {
		scopes = append(scopes, s)
	}
	sort.Slice(scopes, func(i, j int) bool {
		if scopes[i].nif != scopes[j].nif {
			return scopes[i].nif < scopes[j].nif
		}
		return scopes[i].branch < scopes[j].branch
	})
	for _, s := range scopes {
		if _, err := uc.refresher.Clear(ctx, s.nif, s.branch); err != nil {
			uc.log.Warn().Err(err).Str("nif", s.nif).Str("branch", s.branch).Msg("ingesta: invalidación de caché")
		}
	}
}

func label(number string) string {
	if strings.TrimSpace(number) == "" {
		return "(sin número)"
	}
	return number
}

// toEntity valida la petición y construye la factura con IDs nuevos.
func toEntity(req dto.IngestInvoiceRequest, now time.Time) (*entity.Invoice, error) {
	number := NormalizeNumber(req.Number)
	if number == "" {
		return nil, errors.New("número obligatorio")
	}
	nif, err := analytics.ValidateNIF(req.NIF)
	if err != nil {
		return nil, err
	}
	branch, err := analytics.ValidateBranch(req.Branch)
	if err != nil {
		return nil, err
	}
	if branch == "" {
		return nil, errors.New("filial obligatoria")
	}
	date, err := time.Parse(period.DateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return nil, fmt.Errorf("fecha inválida %q", req.Date)
	}
	hour, err := normalizeTime(req.Time)
	if err != nil {
		return nil, err
	}
	if req.Total.IsNegative() {
		return nil, errors.New("total negativo")
	}

	inv := &entity.Invoice{
		ID:        uuid.New().String(),
		Number:    number,
		NIF:       nif,
		Branch:    branch,
		Date:      date,
		Time:      hour,
		Total:     decimal.NewNullDecimal(req.Total),
		ClientNIF: strings.TrimSpace(req.ClientNIF),
		FullText:  req.FullText,
		QRCode:    req.QRCode,
		CreatedAt: now,
	}
	for i, it := range req.Items {
		name := strings.TrimSpace(it.ProductName)
		if name == "" {
			return nil, fmt.Errorf("línea %d: producto obligatorio", i+1)
		}
		if it.Quantity < 0 || it.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("línea %d: cantidad y precio no pueden ser negativos", i+1)
		}
		inv.Items = append(inv.Items, entity.InvoiceItem{
			ID:          uuid.New().String(),
			InvoiceID:   inv.ID,
			ProductName: name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)),
		})
	}
	return inv, nil
}

// normalizeTime acepta HH:MM o HH:MM:SS y devuelve HH:MM:SS.
func normalizeTime(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("15:04:05"), nil
		}
	}
	return "", fmt.Errorf("hora inválida %q", raw)
}
