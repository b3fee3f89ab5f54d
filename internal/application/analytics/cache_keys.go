package analytics

import (
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/faturas-analytics/internal/domain/period"
)

// Vistas cacheadas. Forman parte de la clave de resultado.
const (
	ViewSummary      = "stats/resumo"
	ViewProducts     = "products"
	ViewHeatmap      = "heatmap"
	ViewFullAnalysis = "analise-completa"
)

// ResultViews enumera las vistas que invalida una limpieza de caché.
var ResultViews = []string{ViewSummary, ViewProducts, ViewHeatmap, ViewFullAnalysis}

const allBranchesLabel = "todas"

// ResultKey arma "<vista>/<nif>[/<filial>]/<código>".
func ResultKey(view, nif, branch string, code period.Code) string {
	var b strings.Builder
	b.WriteString(view)
	b.WriteByte('/')
	b.WriteString(nif)
	if branch != "" {
		b.WriteByte('/')
		b.WriteString(branch)
	}
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(int(code)))
	return b.String()
}

// LastUpdatedKey arma "lastUpdated:<nif>[_<filial>]".
func LastUpdatedKey(nif, branch string) string {
	if branch == "" {
		return "lastUpdated:" + nif
	}
	return "lastUpdated:" + nif + "_" + branch
}

// InsightKey arma "insight:<nif>:<filial|todas>:<código>:<tipo>".
func InsightKey(nif, branch string, code period.Code, kind string) string {
	if branch == "" {
		branch = allBranchesLabel
	}
	return strings.Join([]string{"insight", nif, branch, strconv.Itoa(int(code)), kind}, ":")
}

const day = 24 * time.Hour

// InsightTTL fija la vida de un análisis narrativo según el período.
func InsightTTL(code period.Code) time.Duration {
	switch code {
	case period.Week:
		return 7 * day
	case period.Month, period.Quarter:
		return 30 * day
	case period.Year:
		return 365 * day
	default:
		return day
	}
}
