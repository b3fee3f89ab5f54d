package analytics

import (
	"context"
	"fmt"

	"github.com/jhoicas/faturas-analytics/internal/domain"
	"github.com/jhoicas/faturas-analytics/internal/domain/period"
)

// lastUpdatedLayout "dd-mm HH:MM" en la zona del resolver.
const lastUpdatedLayout = "02-01 15:04"

// LastUpdated devuelve la marca de la última actualización registrada.
// ok es false si nunca se registró o si el caché falló.
func (s *Service) LastUpdated(ctx context.Context, nif, branch string) (string, bool) {
	key := LastUpdatedKey(nif, branch)
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache: lectura de lastUpdated")
		return "", false
	}
	if !ok {
		return "", false
	}
	return string(raw), true
}

// MarkUpdated registra "ahora" como última actualización, sin expiración.
func (s *Service) MarkUpdated(ctx context.Context, nif, branch string) string {
	stamp := s.now().In(s.resolver.Location()).Format(lastUpdatedLayout)
	if err := s.cache.Set(ctx, LastUpdatedKey(nif, branch), []byte(stamp), 0); err != nil {
		s.log.Warn().Err(err).Str("nif", nif).Msg("cache: escritura de lastUpdated")
	}
	return stamp
}

// Invalidate borra todas las vistas × códigos del alcance de la filial y del
// negocio completo. Sin filial recorre además las filiales conocidas.
// Devuelve la cantidad de claves que existían.
func (s *Service) Invalidate(ctx context.Context, nif, branch string) (int, error) {
	scopes := []string{""}
	if branch != "" {
		scopes = append(scopes, branch)
	} else {
		known, err := s.invoices.ListBranches(ctx, nif)
		if err != nil {
			return 0, fmt.Errorf("%w: listar filiales: %w", domain.ErrDataFetch, err)
		}
		for _, b := range known {
			if b != "" {
				scopes = append(scopes, b)
			}
		}
	}

	removed := 0
	for _, scope := range scopes {
		for _, view := range ResultViews {
			for _, code := range period.AllCodes() {
				key := ResultKey(view, nif, scope, code)
				ok, err := s.cache.Delete(ctx, key)
				if err != nil {
					s.log.Warn().Err(err).Str("key", key).Msg("cache: borrado fallido")
					continue
				}
				if ok {
					removed++
				}
			}
		}
	}

	s.log.Info().
		Str("nif", nif).
		Str("branch", branch).
		Int("scopes", len(scopes)).
		Int("removed", removed).
		Msg("caché invalidado")
	return removed, nil
}

// ClearFullAnalysis borra el análisis completo de un código o, con code nil,
// de todos. Devuelve las claves efectivamente eliminadas.
func (s *Service) ClearFullAnalysis(ctx context.Context, nif, branch string, code *period.Code) ([]string, error) {
	codes := period.AllCodes()
	if code != nil {
		if !code.Valid() {
			return nil, fmt.Errorf("%w: %d", domain.ErrInvalidPeriod, int(*code))
		}
		codes = []period.Code{*code}
	}

	cleared := make([]string, 0, len(codes))
	for _, c := range codes {
		key := ResultKey(ViewFullAnalysis, nif, branch, c)
		ok, err := s.cache.Delete(ctx, key)
		if err != nil {
			return cleared, fmt.Errorf("cache: borrar %s: %w", key, err)
		}
		if ok {
			cleared = append(cleared, key)
		}
	}
	return cleared, nil
}
