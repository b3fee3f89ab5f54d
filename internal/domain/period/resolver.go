// Package period resuelve los códigos de período (0–5) en la ventana actual y
// en la ventana anterior de igual longitud contra la que se compara.
//
// Regla única para todos los códigos: ventanas móviles que terminan en el día
// de referencia. La ventana anterior termina el día previo al inicio de la
// actual y tiene exactamente los mismos días.
//
//	Código  Nombre            Actual                  Anterior
//	0       Hoy               [ref, ref]              [ref-1, ref-1]
//	1       Ayer              [ref-1, ref-1]          [ref-2, ref-2]
//	2       Últimos 7 días    [ref-6, ref]            [ref-13, ref-7]
//	3       Últimos 30 días   [ref-29, ref]           [ref-59, ref-30]
//	4       Últimos 90 días   [ref-89, ref]           [ref-179, ref-90]
//	5       Últimos 365 días  [ref-364, ref]          [ref-729, ref-365]
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/faturas-analytics/internal/domain"
)

// Code selecciona la granularidad de la comparación.
type Code int

const (
	Today Code = iota
	Yesterday
	Week
	Month
	Quarter
	Year
)

var codeNames = [...]string{
	Today:     "Hoy",
	Yesterday: "Ayer",
	Week:      "Últimos 7 días",
	Month:     "Últimos 30 días",
	Quarter:   "Últimos 90 días",
	Year:      "Últimos 365 días",
}

var codeLengths = [...]int{
	Today:     1,
	Yesterday: 1,
	Week:      7,
	Month:     30,
	Quarter:   90,
	Year:      365,
}

// AllCodes devuelve los códigos soportados en orden.
func AllCodes() []Code {
	return []Code{Today, Yesterday, Week, Month, Quarter, Year}
}

// Valid informa si el código pertenece al conjunto cerrado 0–5.
func (c Code) Valid() bool { return c >= Today && c <= Year }

// Name devuelve la etiqueta legible del período.
func (c Code) Name() string {
	if !c.Valid() {
		return "Desconocido"
	}
	return codeNames[c]
}

// Days devuelve la longitud en días de cada ventana.
func (c Code) Days() int {
	if !c.Valid() {
		return 0
	}
	return codeLengths[c]
}

// ParseCode convierte el parámetro de consulta. Vacío equivale a Hoy.
func ParseCode(raw string) (Code, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Today, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidPeriod, raw)
	}
	c := Code(n)
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %d", domain.ErrInvalidPeriod, n)
	}
	return c, nil
}

// Selection es el par de ventanas resuelto para un código.
type Selection struct {
	Code    Code
	Current DateWindow
	Prior   DateWindow
}

// Span es la unión de ambas ventanas: el rango de la única consulta al repositorio.
func (s Selection) Span() DateWindow {
	return s.Current.Union(s.Prior)
}

// Resolver calcula ventanas respecto al "hoy" de una zona horaria.
type Resolver struct {
	loc *time.Location
	now func() time.Time
}

// NewResolver construye el resolver. now nil usa time.Now; loc nil usa UTC.
func NewResolver(loc *time.Location, now func() time.Time) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{loc: loc, now: now}
}

// Location devuelve la zona usada como referencia.
func (r *Resolver) Location() *time.Location { return r.loc }

// Today devuelve la fecha civil de hoy en la zona configurada.
func (r *Resolver) Today() time.Time {
	return Civil(r.now().In(r.loc))
}

// Resolve resuelve el código con hoy como día de referencia.
func (r *Resolver) Resolve(code Code) (Selection, error) {
	return r.ResolveAt(code, r.Today())
}

// ResolveAt resuelve el código con un día de referencia explícito.
func (r *Resolver) ResolveAt(code Code, ref time.Time) (Selection, error) {
	if !code.Valid() {
		return Selection{}, fmt.Errorf("%w: %d", domain.ErrInvalidPeriod, int(code))
	}
	end := Civil(ref)
	if code == Yesterday {
		end = end.AddDate(0, 0, -1)
	}
	n := code.Days()
	current := DateWindow{Start: end.AddDate(0, 0, -(n - 1)), End: end}
	prior := DateWindow{
		Start: current.Start.AddDate(0, 0, -n),
		End:   current.Start.AddDate(0, 0, -1),
	}
	return Selection{Code: code, Current: current, Prior: prior}, nil
}
