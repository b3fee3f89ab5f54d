package entity

import "time"

// Establishment representa un negocio (NIF) que un usuario puede consultar.
type Establishment struct {
	NIF       string
	Name      string
	Address   string
	Branches  []string // filiales conocidas a partir de las facturas
	CreatedAt time.Time
}

// Roles reconocidos en el token.
const (
	RoleAdmin      = "admin"      // acceso a todos los NIF
	RoleAnalyst    = "analista"   // acceso a los NIF asignados
	RoleIntegrator = "integrador" // puede ingerir facturas
)

// IsValidRole informa si role es uno de los roles reconocidos.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAnalyst, RoleIntegrator:
		return true
	}
	return false
}
