package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit int `query:"limit"`
}

// DefaultPage aplica el límite por defecto y el máximo permitido.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 100
	}
	if p.Limit > 1000 {
		p.Limit = 1000
	}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// LastUpdatedDTO respuesta de GET /api/ultima-atualizacao.
// LastUpdated es nil cuando aún no se registró ninguna actualización.
type LastUpdatedDTO struct {
	NIF         string  `json:"nif"`
	Branch      string  `json:"branch,omitempty"`
	LastUpdated *string `json:"last_updated"`
}

// CacheClearDTO respuesta de DELETE /api/limparcache.
type CacheClearDTO struct {
	NIF          string `json:"nif"`
	Branch       string `json:"branch,omitempty"`
	KeysRemoved  int    `json:"keys_removed"`
	WarmupQueued bool   `json:"warmup_queued"`
	Message      string `json:"message"`
}

// AnalysisCacheClearDTO respuesta de DELETE /api/limparcache-analise-completa.
type AnalysisCacheClearDTO struct {
	NIF         string   `json:"nif"`
	Branch      string   `json:"branch,omitempty"`
	ClearedKeys []string `json:"cleared_keys"`
	Count       int      `json:"count"`
}

// EstablishmentDTO negocio visible para el usuario del token.
type EstablishmentDTO struct {
	NIF      string   `json:"nif"`
	Name     string   `json:"name"`
	Address  string   `json:"address,omitempty"`
	Branches []string `json:"branches"`
}
