package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/faturas-analytics/internal/application/analytics"
	"github.com/jhoicas/faturas-analytics/internal/application/dto"
	"github.com/jhoicas/faturas-analytics/internal/application/ports"
	"github.com/jhoicas/faturas-analytics/internal/domain"
	"github.com/jhoicas/faturas-analytics/internal/domain/period"
)

const defaultInsightTimeout = 10 * time.Second

// summarySource es lo único que el caso de uso necesita del servicio de analítica.
type summarySource interface {
	InsightSummary(ctx context.Context, q analytics.Query) (*dto.InsightSummary, error)
}

// InsightUseCase orquesta los análisis narrativos asistidos por IA.
// Aplica un timeout en cada llamada al LLM para evitar que las latencias
// externas bloqueen los goroutines del servidor.
type InsightUseCase struct {
	source  summarySource
	llm     ports.LLMService // nil = IA desactivada
	cache   ports.ResultCache
	log     zerolog.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewInsightUseCase construye el caso de uso inyectando el puerto LLMService.
func NewInsightUseCase(
	source summarySource,
	llm ports.LLMService,
	cache ports.ResultCache,
	log zerolog.Logger,
	timeout time.Duration,
) *InsightUseCase {
	if timeout <= 0 {
		timeout = defaultInsightTimeout
	}
	return &InsightUseCase{
		source:  source,
		llm:     llm,
		cache:   cache,
		log:     log,
		timeout: timeout,
		now:     time.Now,
	}
}

// Generate devuelve el análisis de un tipo, desde caché si existe.
func (uc *InsightUseCase) Generate(ctx context.Context, q analytics.Query, kind string) (*dto.InsightDTO, error) {
	prompt, err := analytics.Prompt(kind)
	if err != nil {
		return nil, err
	}
	if uc.llm == nil {
		return nil, fmt.Errorf("%w: proveedor no configurado", domain.ErrAIUnavailable)
	}
	if hit, ok := uc.lookup(ctx, q, kind); ok {
		return hit, nil
	}

	summary, err := uc.source.InsightSummary(ctx, q)
	if err != nil {
		return nil, err
	}
	return uc.generate(ctx, q, kind, prompt, summary)
}

// GenerateAll lanza todos los tipos en paralelo sobre un único resumen.
// Los fallos parciales se listan en Errors; el resumen ejecutivo se genera
// si al menos un análisis tuvo éxito.
func (uc *InsightUseCase) GenerateAll(ctx context.Context, q analytics.Query) (*dto.InsightBatchDTO, error) {
	if uc.llm == nil {
		return nil, fmt.Errorf("%w: proveedor no configurado", domain.ErrAIUnavailable)
	}
	summary, err := uc.source.InsightSummary(ctx, q)
	if err != nil {
		return nil, err
	}

	kinds := analytics.Kinds()
	type result struct {
		kind string
		dto  *dto.InsightDTO
		err  error
	}
	results := make(chan result, len(kinds))
	for _, kind := range kinds {
		go func(kind string) {
			if hit, ok := uc.lookup(ctx, q, kind); ok {
				results <- result{kind: kind, dto: hit}
				return
			}
			prompt, _ := analytics.Prompt(kind)
			out, err := uc.generate(ctx, q, kind, prompt, summary)
			results <- result{kind: kind, dto: out, err: err}
		}(kind)
	}

	batch := &dto.InsightBatchDTO{
		NIF:      q.NIF,
		Branch:   q.Branch,
		Period:   summary.Period,
		Analyses: make(map[string]dto.InsightDTO, len(kinds)),
	}
	for range kinds {
		r := <-results
		if r.err != nil {
			batch.Errors = append(batch.Errors, r.kind+": "+r.err.Error())
			continue
		}
		batch.Analyses[r.kind] = *r.dto
		batch.TotalTokens += r.dto.TokensUsed
	}
	if len(batch.Analyses) == 0 {
		return nil, fmt.Errorf("%w: ningún análisis pudo generarse", domain.ErrAIUnavailable)
	}

	exec, err := uc.executive(ctx, q, summary, batch.Analyses)
	if err != nil {
		batch.Errors = append(batch.Errors, analytics.KindExecutive+": "+err.Error())
	} else {
		batch.Executive = exec
		batch.TotalTokens += exec.TokensUsed
	}
	batch.GeneratedAt = uc.now().UTC()
	return batch, nil
}

// Cached devuelve el análisis guardado o domain.ErrNotFound.
func (uc *InsightUseCase) Cached(ctx context.Context, q analytics.Query, kind string) (*dto.InsightDTO, error) {
	if _, err := analytics.Prompt(kind); err != nil {
		return nil, err
	}
	hit, ok := uc.lookup(ctx, q, kind)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return hit, nil
}

// Clear borra todos los análisis del negocio para todos los períodos y tipos.
func (uc *InsightUseCase) Clear(ctx context.Context, nif, branch string) (*dto.InsightCacheClearDTO, error) {
	nif, err := analytics.ValidateNIF(nif)
	if err != nil {
		return nil, err
	}
	if branch, err = analytics.ValidateBranch(branch); err != nil {
		return nil, err
	}

	kinds := append(analytics.Kinds(), analytics.KindExecutive)
	removed := 0
	for _, code := range period.AllCodes() {
		for _, kind := range kinds {
			ok, err := uc.cache.Delete(ctx, analytics.InsightKey(nif, branch, code, kind))
			if err != nil {
				return nil, fmt.Errorf("insight: limpiar caché: %w", err)
			}
			if ok {
				removed++
			}
		}
	}
	return &dto.InsightCacheClearDTO{NIF: nif, Branch: branch, KeysRemoved: removed}, nil
}

// ── internos ──────────────────────────────────────────────────────────────────

func (uc *InsightUseCase) generate(
	ctx context.Context,
	q analytics.Query,
	kind, prompt string,
	summary *dto.InsightSummary,
) (*dto.InsightDTO, error) {
	// Timeout propio: las llamadas a LLMs pueden demorar varios segundos.
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res, err := uc.llm.GenerateInsight(ctx, summary, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("insight %s: %w", kind, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrAIUnavailable, kind, err)
	}

	out := &dto.InsightDTO{
		NIF:         q.NIF,
		Branch:      q.Branch,
		Period:      summary.Period,
		Kind:        kind,
		Content:     res.Content,
		Model:       res.Model,
		TokensUsed:  res.TokensUsed,
		GeneratedAt: uc.now().UTC(),
	}
	uc.store(ctx, q, kind, out)
	return out, nil
}

func (uc *InsightUseCase) executive(
	ctx context.Context,
	q analytics.Query,
	summary *dto.InsightSummary,
	analyses map[string]dto.InsightDTO,
) (*dto.InsightDTO, error) {
	prompt, _ := analytics.Prompt(analytics.KindExecutive)
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nAnálisis previos:")
	for _, kind := range analytics.Kinds() {
		if a, ok := analyses[kind]; ok {
			b.WriteString("\n\n[" + kind + "]\n" + a.Content)
		}
	}
	return uc.generate(ctx, q, analytics.KindExecutive, b.String(), summary)
}

func (uc *InsightUseCase) lookup(ctx context.Context, q analytics.Query, kind string) (*dto.InsightDTO, bool) {
	key := analytics.InsightKey(q.NIF, q.Branch, q.Code, kind)
	raw, ok, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("insight: lectura de caché")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var out dto.InsightDTO
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	out.Cached = true
	return &out, true
}

func (uc *InsightUseCase) store(ctx context.Context, q analytics.Query, kind string, v *dto.InsightDTO) {
	key := analytics.InsightKey(q.NIF, q.Branch, q.Code, kind)
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, key, raw, analytics.InsightTTL(q.Code)); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("insight: escritura de caché")
	}
}
