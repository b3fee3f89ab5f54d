package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrInvalidNIF    = errors.New("NIF obligatorio y solo puede contener dígitos")
	ErrInvalidPeriod = errors.New("período inválido: debe ser un entero de 0 a 5")
	ErrInvalidBranch = errors.New("filial inválida")
	ErrDuplicate     = errors.New("recurso duplicado")
	ErrUnauthorized  = errors.New("no autorizado")
	ErrForbidden     = errors.New("acceso denegado")

	// ErrDataFetch envuelve cualquier fallo del repositorio de facturas.
	// No se reintenta ni se cachea; falla solo la petición en curso.
	ErrDataFetch = errors.New("error al obtener datos")

	// ErrAIUnavailable el proveedor de IA no está configurado o falló.
	ErrAIUnavailable = errors.New("servicio de IA no disponible")
)

// IsValidation informa si err es un error de validación de entrada
// (se rechaza antes de consultar el repositorio).
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidNIF) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidBranch)
}
