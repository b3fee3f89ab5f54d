package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/faturas-analytics/internal/application/dto"
	"github.com/jhoicas/faturas-analytics/internal/domain"
	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
	"github.com/jhoicas/faturas-analytics/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// TokenUseCase emite tokens firmados. La autenticación de usuarios vive fuera
// de este servicio; aquí solo se firman tokens para integraciones y desarrollo.
type TokenUseCase struct {
	jwtCfg JWTConfig
	now    func() time.Time
}

// NewTokenUseCase construye el caso de uso.
func NewTokenUseCase(jwtCfg JWTConfig) *TokenUseCase {
	return &TokenUseCase{jwtCfg: jwtCfg, now: time.Now}
}

// Issue firma un token para userID con el rol indicado. expMinutes <= 0 usa
// la expiración configurada.
func (uc *TokenUseCase) Issue(userID, role string, expMinutes int) (*dto.TokenResponse, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: usuario obligatorio", domain.ErrInvalidInput)
	}
	if !entity.IsValidRole(role) {
		return nil, fmt.Errorf("%w: rol desconocido %q", domain.ErrInvalidInput, role)
	}
	if expMinutes <= 0 {
		expMinutes = uc.jwtCfg.ExpMinutes
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, userID, role, uc.jwtCfg.Issuer, expMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		Token:     token,
		UserID:    userID,
		Role:      role,
		ExpiresAt: uc.now().UTC().Add(time.Duration(expMinutes) * time.Minute),
	}, nil
}
