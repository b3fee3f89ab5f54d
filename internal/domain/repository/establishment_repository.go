package repository

import (
	"context"

	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
)

// EstablishmentRepository define el puerto de consulta de negocios por usuario.
type EstablishmentRepository interface {
	ListByUser(ctx context.Context, userID string) ([]entity.Establishment, error)
	// HasAccess informa si el usuario tiene asignado el NIF.
	HasAccess(ctx context.Context, userID, nif string) (bool, error)
}
