package analytics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/faturas-analytics/internal/application/analytics"
	"github.com/jhoicas/faturas-analytics/internal/domain"
	"github.com/jhoicas/faturas-analytics/internal/domain/period"
)

func TestParseQuery_Valida(t *testing.T) {
	q, err := analytics.ParseQuery(" 123456789 ", "  Centro ", "3")

	require.NoError(t, err)
	assert.Equal(t, "123456789", q.NIF)
	assert.Equal(t, "Centro", q.Branch)
	assert.Equal(t, period.Month, q.Code)
}

func TestParseQuery_PeriodoVacioEsHoy(t *testing.T) {
	q, err := analytics.ParseQuery("1", "", "")

	require.NoError(t, err)
	assert.Equal(t, period.Today, q.Code)
}

func TestParseQuery_Errores(t *testing.T) {
	cases := []struct {
		name   string
		nif    string
		branch string
		period string
		want   error
	}{
		{"nif vacío", "", "", "0", domain.ErrInvalidNIF},
		{"nif con letras", "PT123", "", "0", domain.ErrInvalidNIF},
		{"período fuera de rango", "123", "", "7", domain.ErrInvalidPeriod},
		{"período no numérico", "123", "", "mes", domain.ErrInvalidPeriod},
		{"filial con barra", "123", "a/b", "0", domain.ErrInvalidBranch},
		{"filial con dos puntos", "123", "a:b", "0", domain.ErrInvalidBranch},
		{"filial con control", "123", "a\nb", "0", domain.ErrInvalidBranch},
		{"filial muy larga", "123", strings.Repeat("x", 65), "0", domain.ErrInvalidBranch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := analytics.ParseQuery(tc.nif, tc.branch, tc.period)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "stats/resumo/123/0", analytics.ResultKey(analytics.ViewSummary, "123", "", period.Today))
	assert.Equal(t, "heatmap/123/Centro/5", analytics.ResultKey(analytics.ViewHeatmap, "123", "Centro", period.Year))
	assert.Equal(t, "lastUpdated:123", analytics.LastUpdatedKey("123", ""))
	assert.Equal(t, "lastUpdated:123_Centro", analytics.LastUpdatedKey("123", "Centro"))
	assert.Equal(t, "insight:123:todas:2:vendas", analytics.InsightKey("123", "", period.Week, analytics.KindSales))
	assert.Equal(t, "insight:123:Norte:0:marketing", analytics.InsightKey("123", "Norte", period.Today, analytics.KindMarketing))
}

func TestInsightTTL(t *testing.T) {
	day := 24 * time.Hour
	want := map[period.Code]time.Duration{
		period.Today:     day,
		period.Yesterday: day,
		period.Week:      7 * day,
		period.Month:     30 * day,
		period.Quarter:   30 * day,
		period.Year:      365 * day,
	}
	for code, ttl := range want {
		assert.Equal(t, ttl, analytics.InsightTTL(code), code.Name())
	}
}

func TestPrompts(t *testing.T) {
	assert.Equal(t, []string{"estrategico", "financeiro", "marketing", "operacional", "vendas"}, analytics.Kinds())

	p, err := analytics.Prompt(analytics.KindExecutive)
	require.NoError(t, err)
	assert.Contains(t, p, "resumen ejecutivo")

	_, err = analytics.Prompt("horoscopo")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
