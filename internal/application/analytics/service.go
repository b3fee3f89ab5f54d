package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/faturas-analytics/internal/application/dto"
	"github.com/jhoicas/faturas-analytics/internal/application/ports"
	"github.com/jhoicas/faturas-analytics/internal/domain"
	domanalytics "github.com/jhoicas/faturas-analytics/internal/domain/analytics"
	"github.com/jhoicas/faturas-analytics/internal/domain/period"
	"github.com/jhoicas/faturas-analytics/internal/domain/repository"
)

const (
	defaultTTL          = 180 * time.Second
	defaultTopProducts  = 10
	defaultHeatmapPeaks = 5
	defaultAITimeout    = 10 * time.Second
)

// Options parámetros de presentación y caché del servicio.
type Options struct {
	TTL          time.Duration // vida de los resultados cacheados
	TopProducts  int           // productos en el análisis completo
	HeatmapPeaks int           // celdas pico en el análisis completo
	AITimeout    time.Duration
	WeekdayOrder domanalytics.WeekdayOrder
	Clock        func() time.Time // nil = time.Now
}

func (o *Options) applyDefaults() {
	if o.TTL <= 0 {
		o.TTL = defaultTTL
	}
	if o.TopProducts <= 0 {
		o.TopProducts = defaultTopProducts
	}
	if o.HeatmapPeaks <= 0 {
		o.HeatmapPeaks = defaultHeatmapPeaks
	}
	if o.AITimeout <= 0 {
		o.AITimeout = defaultAITimeout
	}
}

// Service arma las vistas comparativas. Es seguro para uso concurrente:
// cada petición trabaja sobre su propia copia de las facturas.
type Service struct {
	invoices repository.InvoiceRepository
	cache    ports.ResultCache
	resolver *period.Resolver
	llm      ports.LLMService // nil = IA desactivada
	log      zerolog.Logger
	opts     Options
	now      func() time.Time
}

// NewService construye el servicio. llm puede ser nil.
func NewService(
	invoices repository.InvoiceRepository,
	cache ports.ResultCache,
	resolver *period.Resolver,
	llm ports.LLMService,
	log zerolog.Logger,
	opts Options,
) *Service {
	opts.applyDefaults()
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Service{
		invoices: invoices,
		cache:    cache,
		resolver: resolver,
		llm:      llm,
		log:      log,
		opts:     opts,
		now:      now,
	}
}

// Resolver expone el resolver para los casos de uso que comparten la misma noción de "hoy".
func (s *Service) Resolver() *period.Resolver { return s.resolver }

// snapshot es el resultado de una única consulta al repositorio.
type snapshot struct {
	sel period.Selection
	agg domanalytics.Aggregation
}

// load resuelve el período, trae la unión de ambas ventanas en una sola
// consulta y agrega. Los errores del repositorio se envuelven en ErrDataFetch.
func (s *Service) load(ctx context.Context, q Query) (*snapshot, error) {
	sel, err := s.resolver.Resolve(q.Code)
	if err != nil {
		return nil, err
	}
	span := sel.Span()
	invs, err := s.invoices.FetchByDateRange(ctx, q.NIF, span.Start, span.End, q.Branch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDataFetch, err)
	}
	agg := domanalytics.Aggregate(invs, sel.Current, sel.Prior)
	if agg.Skipped > 0 {
		s.log.Debug().
			Str("nif", q.NIF).
			Str("branch", q.Branch).
			Int("skipped", agg.Skipped).
			Msg("facturas mal formadas descartadas")
	}
	return &snapshot{sel: sel, agg: agg}, nil
}

// readThrough devuelve el valor cacheado o lo construye y lo guarda.
// Los fallos del caché se registran y se ignoran; los errores de build no se cachean.
func readThrough[T any](ctx context.Context, s *Service, key string, build func(context.Context) (*T, error)) (*T, error) {
	return readThroughIf(ctx, s, key, build, nil)
}

// readThroughIf es readThrough pero solo guarda cuando cacheable devuelve true.
// cacheable nil guarda siempre.
func readThroughIf[T any](
	ctx context.Context,
	s *Service,
	key string,
	build func(context.Context) (*T, error),
	cacheable func(*T) bool,
) (*T, error) {
	raw, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Str("key", key).Msg("cache: lectura fallida")
	case ok:
		var out T
		if err := json.Unmarshal(raw, &out); err == nil {
			return &out, nil
		}
		s.log.Warn().Str("key", key).Msg("cache: valor corrupto, se recalcula")
	}

	out, err := build(ctx)
	if err != nil {
		return nil, err
	}
	if cacheable == nil || cacheable(out) {
		s.store(ctx, key, out, s.opts.TTL)
	}
	return out, nil
}

// store serializa y guarda; cualquier fallo se registra.
func (s *Service) store(ctx context.Context, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache: serializar resultado")
		return
	}
	if err := s.cache.Set(ctx, key, raw, ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache: escritura fallida")
	}
}

// ── Resumen ───────────────────────────────────────────────────────────────────

// Summary devuelve las cuatro métricas comparadas y la tabla horaria.
func (s *Service) Summary(ctx context.Context, q Query) (*dto.SummaryReportDTO, error) {
	key := ResultKey(ViewSummary, q.NIF, q.Branch, q.Code)
	report, err := readThrough(ctx, s, key, func(ctx context.Context) (*dto.SummaryReportDTO, error) {
		snap, err := s.load(ctx, q)
		if err != nil {
			return nil, err
		}
		return &dto.SummaryReportDTO{
			NIF:         q.NIF,
			Branch:      q.Branch,
			Period:      PeriodDTOFrom(snap.sel),
			Metrics:     toMetricsDTO(snap.agg),
			Hourly:      toHourlyDTO(snap.agg.Hourly),
			GeneratedAt: s.now().UTC(),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	report.LastUpdated, _ = s.LastUpdated(ctx, q.NIF, q.Branch)
	return report, nil
}

// ── Productos ─────────────────────────────────────────────────────────────────

// Products devuelve el ranking del período actual. limit <= 0 devuelve todos.
// El caché guarda el ranking completo; el recorte se aplica al leer.
func (s *Service) Products(ctx context.Context, q Query, limit int) (*dto.ProductsReportDTO, error) {
	key := ResultKey(ViewProducts, q.NIF, q.Branch, q.Code)
	report, err := readThrough(ctx, s, key, func(ctx context.Context) (*dto.ProductsReportDTO, error) {
		snap, err := s.load(ctx, q)
		if err != nil {
			return nil, err
		}
		current := domanalytics.RankProducts(snap.agg.CurrentInvoices)
		prior := domanalytics.RankProducts(snap.agg.PriorInvoices)
		return &dto.ProductsReportDTO{
			NIF:           q.NIF,
			Branch:        q.Branch,
			Period:        PeriodDTOFrom(snap.sel),
			Products:      toProductDTOs(current, 0),
			TotalProducts: len(current),
			Amount: toVarianceDTO(domanalytics.Compare(
				domanalytics.TotalAmount(current),
				domanalytics.TotalAmount(prior),
			)),
			GeneratedAt: s.now().UTC(),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(report.Products) > limit {
		report.Products = report.Products[:limit]
	}
	return report, nil
}

// ── Mapa de calor ─────────────────────────────────────────────────────────────

// Heatmap construye la grilla hora × día para cada bucket por separado.
func (s *Service) Heatmap(ctx context.Context, q Query) (*dto.HeatmapReportDTO, error) {
	key := ResultKey(ViewHeatmap, q.NIF, q.Branch, q.Code)
	return readThrough(ctx, s, key, func(ctx context.Context) (*dto.HeatmapReportDTO, error) {
		snap, err := s.load(ctx, q)
		if err != nil {
			return nil, err
		}
		cur := domanalytics.BuildHeatmap(snap.agg.CurrentInvoices, s.opts.WeekdayOrder)
		pri := domanalytics.BuildHeatmap(snap.agg.PriorInvoices, s.opts.WeekdayOrder)
		return &dto.HeatmapReportDTO{
			NIF:         q.NIF,
			Branch:      q.Branch,
			Period:      PeriodDTOFrom(snap.sel),
			Current:     toHeatmapDTO(cur),
			Prior:       toHeatmapDTO(pri),
			Volume:      toVarianceDTO(domanalytics.Compare(cur.TotalVolume, pri.TotalVolume)),
			Count:       toVarianceDTO(domanalytics.CompareInt(int64(cur.TotalCount), int64(pri.TotalCount))),
			GeneratedAt: s.now().UTC(),
		}, nil
	})
}
