package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
	"github.com/jhoicas/faturas-analytics/internal/domain/repository"
)

var _ repository.EstablishmentRepository = (*EstablishmentRepo)(nil)

// EstablishmentRepo resuelve qué negocios puede consultar cada usuario.
type EstablishmentRepo struct {
	q Querier
}

// NewEstablishmentRepository construye el adaptador.
func NewEstablishmentRepository(q Querier) *EstablishmentRepo {
	return &EstablishmentRepo{q: q}
}

// ListByUser devuelve los negocios asignados con las filiales vistas en sus facturas.
func (r *EstablishmentRepo) ListByUser(ctx context.Context, userID string) ([]entity.Establishment, error) {
	const query = `
	SELECT
	    e.nif,
	    e.name,
	    COALESCE(e.address, '')                                              AS address,
	    e.created_at,
	    COALESCE(
	        (SELECT array_agg(DISTINCT i.branch ORDER BY i.branch)
	         FROM invoices i
	         WHERE i.nif = e.nif AND i.branch <> ''),
	        '{}'
	    )                                                                    AS branches
	FROM establishments e
	JOIN user_establishments ue ON ue.nif = e.nif
	WHERE ue.user_id = $1
	ORDER BY e.name`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("establishments: list: %w", err)
	}
	defer rows.Close()

	out := []entity.Establishment{}
	for rows.Next() {
		var e entity.Establishment
		if err := rows.Scan(&e.NIF, &e.Name, &e.Address, &e.CreatedAt, &e.Branches); err != nil {
			return nil, fmt.Errorf("establishments: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// HasAccess informa si existe la asignación usuario → NIF.
func (r *EstablishmentRepo) HasAccess(ctx context.Context, userID, nif string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
		    SELECT 1 FROM user_establishments WHERE user_id = $1 AND nif = $2
		)`, userID, nif).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("establishments: has access: %w", err)
	}
	return ok, nil
}
