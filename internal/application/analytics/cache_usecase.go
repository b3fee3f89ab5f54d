package analytics

import (
	"context"

	"github.com/jhoicas/faturas-analytics/internal/application/dto"
	"github.com/jhoicas/faturas-analytics/internal/domain/period"
)

// CacheUseCase expone las operaciones de caché a la capa HTTP y a la CLI.
type CacheUseCase struct {
	svc    *Service
	warmer *Warmer // nil = sin recálculo en segundo plano
}

// NewCacheUseCase construye el caso de uso. warmer puede ser nil.
func NewCacheUseCase(svc *Service, warmer *Warmer) *CacheUseCase {
	return &CacheUseCase{svc: svc, warmer: warmer}
}

// Clear invalida todas las vistas del negocio y encola el recálculo.
// Vuelve de inmediato; el recálculo corre en segundo plano.
func (uc *CacheUseCase) Clear(ctx context.Context, nif, branch string) (*dto.CacheClearDTO, error) {
	nif, branch, err := validateScope(nif, branch)
	if err != nil {
		return nil, err
	}
	removed, err := uc.svc.Invalidate(ctx, nif, branch)
	if err != nil {
		return nil, err
	}
	queued := false
	if uc.warmer != nil {
		queued = uc.warmer.Enqueue(nif, branch)
	}
	msg := "Caché limpiado"
	if queued {
		msg = "Caché limpiado y actualización en segundo plano iniciada"
	}
	return &dto.CacheClearDTO{
		NIF:          nif,
		Branch:       branch,
		KeysRemoved:  removed,
		WarmupQueued: queued,
		Message:      msg,
	}, nil
}

// ClearFullAnalysis borra el análisis completo de un código o de todos.
func (uc *CacheUseCase) ClearFullAnalysis(ctx context.Context, nif, branch string, code *period.Code) (*dto.AnalysisCacheClearDTO, error) {
	nif, branch, err := validateScope(nif, branch)
	if err != nil {
		return nil, err
	}
	keys, err := uc.svc.ClearFullAnalysis(ctx, nif, branch, code)
	if err != nil {
		return nil, err
	}
	return &dto.AnalysisCacheClearDTO{NIF: nif, Branch: branch, ClearedKeys: keys, Count: len(keys)}, nil
}

// LastUpdated devuelve la marca registrada, o nil si no existe.
func (uc *CacheUseCase) LastUpdated(ctx context.Context, nif, branch string) (*dto.LastUpdatedDTO, error) {
	nif, branch, err := validateScope(nif, branch)
	if err != nil {
		return nil, err
	}
	out := &dto.LastUpdatedDTO{NIF: nif, Branch: branch}
	if stamp, ok := uc.svc.LastUpdated(ctx, nif, branch); ok {
		out.LastUpdated = &stamp
	}
	return out, nil
}

func validateScope(nif, branch string) (string, string, error) {
	nif, err := ValidateNIF(nif)
	if err != nil {
		return "", "", err
	}
	branch, err = ValidateBranch(branch)
	if err != nil {
		return "", "", err
	}
	return nif, branch, nil
}
