package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/faturas-analytics/internal/application/dto"
	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
	"github.com/jhoicas/faturas-analytics/internal/domain/repository"
)

// AccessService decide qué negocios (NIF) puede consultar cada usuario.
// Es el único punto de la aplicación que conoce la asignación usuario → negocio.
type AccessService struct {
	establishments repository.EstablishmentRepository
}

// NewAccessService construye el servicio de acceso.
func NewAccessService(establishments repository.EstablishmentRepository) *AccessService {
	return &AccessService{establishments: establishments}
}

// HasAccess informa si el usuario puede consultar el NIF. Los administradores
// acceden a todos. Devuelve error solo ante fallos de infraestructura.
func (s *AccessService) HasAccess(ctx context.Context, userID, role, nif string) (bool, error) {
	if role == entity.RoleAdmin {
		return true, nil
	}
	if userID == "" || nif == "" {
		return false, fmt.Errorf("access: userID y nif son obligatorios")
	}
	return s.establishments.HasAccess(ctx, userID, nif)
}

// Establishments lista los negocios asignados al usuario.
func (s *AccessService) Establishments(ctx context.Context, userID string) ([]dto.EstablishmentDTO, error) {
	list, err := s.establishments.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("access: listar establecimientos: %w", err)
	}
	out := make([]dto.EstablishmentDTO, 0, len(list))
	for _, e := range list {
		branches := e.Branches
		if branches == nil {
			branches = []string{}
		}
		out = append(out, dto.EstablishmentDTO{
			NIF:      e.NIF,
			Name:     e.Name,
			Address:  e.Address,
			Branches: branches,
		})
	}
	return out, nil
}
