// Package analytics orquesta el motor de comparación entre períodos: resuelve
// el período, consulta el repositorio de facturas una sola vez por petición,
// agrega y arma las vistas (resumen, productos, mapa de calor, análisis
// completo) con lectura y escritura a través del caché de resultados.
package analytics

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jhoicas/faturas-analytics/internal/domain"
	"github.com/jhoicas/faturas-analytics/internal/domain/period"
)

const maxBranchLen = 64

// Query identifica una consulta: negocio, filial opcional y código de período.
type Query struct {
	NIF    string
	Branch string // "" = todas las filiales
	Code   period.Code
}

// ParseQuery valida los parámetros crudos de la petición.
// Se rechaza antes de tocar el repositorio.
func ParseQuery(nif, branch, rawPeriod string) (Query, error) {
	code, err := period.ParseCode(rawPeriod)
	if err != nil {
		return Query{}, err
	}
	return NewQuery(nif, branch, code)
}

// NewQuery valida NIF y filial para un código ya resuelto.
func NewQuery(nif, branch string, code period.Code) (Query, error) {
	nif, err := ValidateNIF(nif)
	if err != nil {
		return Query{}, err
	}
	branch, err = ValidateBranch(branch)
	if err != nil {
		return Query{}, err
	}
	if !code.Valid() {
		return Query{}, fmt.Errorf("%w: %d", domain.ErrInvalidPeriod, int(code))
	}
	return Query{NIF: nif, Branch: branch, Code: code}, nil
}

// ValidateNIF exige un NIF no vacío compuesto solo por dígitos.
func ValidateNIF(nif string) (string, error) {
	nif = strings.TrimSpace(nif)
	if nif == "" {
		return "", domain.ErrInvalidNIF
	}
	for _, r := range nif {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q", domain.ErrInvalidNIF, nif)
		}
	}
	return nif, nil
}

// ValidateBranch recorta la filial y rechaza valores que romperían las claves de caché.
func ValidateBranch(branch string) (string, error) {
	branch = strings.TrimSpace(branch)
	if len(branch) > maxBranchLen {
		return "", fmt.Errorf("%w: máximo %d caracteres", domain.ErrInvalidBranch, maxBranchLen)
	}
	for _, r := range branch {
		if r == '/' || r == ':' || unicode.IsControl(r) {
			return "", fmt.Errorf("%w: carácter no permitido %q", domain.ErrInvalidBranch, r)
		}
	}
	return branch, nil
}

// WithCode devuelve la misma consulta para otro período.
func (q Query) WithCode(code period.Code) Query {
	q.Code = code
	return q
}
