package period

import (
	"fmt"
	"time"
)

// DateLayout es el formato de fecha usado en consultas y respuestas.
const DateLayout = "2006-01-02"

// DateWindow es un rango de fechas civiles inclusivo en ambos extremos.
// Start y End se guardan como medianoche UTC para que la aritmética de días
// no dependa de cambios de horario.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// NewDateWindow construye la ventana normalizando ambos extremos a fecha civil.
func NewDateWindow(start, end time.Time) (DateWindow, error) {
	w := DateWindow{Start: Civil(start), End: Civil(end)}
	if w.End.Before(w.Start) {
		return DateWindow{}, fmt.Errorf("ventana inválida: %s > %s",
			w.Start.Format(DateLayout), w.End.Format(DateLayout))
	}
	return w, nil
}

// Civil descarta la hora y la zona: conserva año, mes y día tal como los ve t.
func Civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Contains compara por fecha civil, ignorando hora y zona de d.
func (w DateWindow) Contains(d time.Time) bool {
	c := Civil(d)
	return !c.Before(w.Start) && !c.After(w.End)
}

// Days devuelve la cantidad de días de la ventana (mínimo 1).
func (w DateWindow) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// Overlaps informa si las dos ventanas comparten algún día.
func (w DateWindow) Overlaps(o DateWindow) bool {
	return !w.End.Before(o.Start) && !o.End.Before(w.Start)
}

// Union devuelve la ventana mínima que cubre ambas.
func (w DateWindow) Union(o DateWindow) DateWindow {
	u := w
	if o.Start.Before(u.Start) {
		u.Start = o.Start
	}
	if o.End.After(u.End) {
		u.End = o.End
	}
	return u
}

// Each recorre los días de la ventana en orden ascendente.
func (w DateWindow) Each(fn func(day time.Time)) {
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// String devuelve "AAAA-MM-DD..AAAA-MM-DD".
func (w DateWindow) String() string {
	return w.Start.Format(DateLayout) + ".." + w.End.Format(DateLayout)
}
