package analytics

import (
	"fmt"
	"sort"

	"github.com/jhoicas/faturas-analytics/internal/domain"
)

// Tipos de análisis narrativo.
const (
	KindSales       = "vendas"
	KindOperational = "operacional"
	KindFinancial   = "financeiro"
	KindMarketing   = "marketing"
	KindStrategic   = "estrategico"
	KindExecutive   = "ejecutivo"
)

const promptBase = `Eres un analista de negocio para comercios minoristas. Recibirás un JSON con
las métricas del período actual y del período anterior de igual duración, los
productos más vendidos, los picos de movimiento, alertas e insights ya calculados.
Responde en español, en texto plano, con frases cortas. No inventes cifras que no
estén en los datos.`

var prompts = map[string]string{
	KindSales: promptBase + `
Enfoque: ventas. Explica la variación del volumen y del ticket medio, qué
productos explican el resultado y dos acciones concretas para la próxima semana.`,
	KindOperational: promptBase + `
Enfoque: operación. Usa los picos de movimiento para sugerir turnos de personal,
horarios de reposición y franjas con capacidad ociosa.`,
	KindFinancial: promptBase + `
Enfoque: finanzas. Evalúa la evolución de ingresos, la cantidad de facturas y el
ticket medio; señala riesgos de caja si el volumen cae.`,
	KindMarketing: promptBase + `
Enfoque: marketing. Propón promociones basadas en los productos líderes y en las
franjas de menor movimiento.`,
	KindStrategic: promptBase + `
Enfoque: estrategia. Resume la tendencia del negocio y propone prioridades para
el próximo período.`,
	KindExecutive: promptBase + `
Enfoque: resumen ejecutivo. En no más de cinco viñetas, resume la situación del
negocio para la dirección.`,
}

// Kinds devuelve los tipos disponibles para el usuario, en orden estable.
// El resumen ejecutivo es interno y no se incluye.
func Kinds() []string {
	out := make([]string, 0, len(prompts)-1)
	for k := range prompts {
		if k != KindExecutive {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Prompt devuelve la plantilla de un tipo o ErrInvalidInput si no existe.
func Prompt(kind string) (string, error) {
	p, ok := prompts[kind]
	if !ok {
		return "", fmt.Errorf("%w: tipo de análisis %q", domain.ErrInvalidInput, kind)
	}
	return p, nil
}
