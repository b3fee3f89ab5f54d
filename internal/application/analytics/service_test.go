package analytics_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/faturas-analytics/internal/application/analytics"
	"github.com/jhoicas/faturas-analytics/internal/application/dto"
	"github.com/jhoicas/faturas-analytics/internal/domain"
	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
	"github.com/jhoicas/faturas-analytics/internal/domain/period"
)

// ──────────────────────────────────────────────────────────────────────────────
// Summary
// ──────────────────────────────────────────────────────────────────────────────

func TestSummary_HoyVsAyer(t *testing.T) {
	repo := new(mockInvoiceRepo)
	repo.On("FetchByDateRange", mock.Anything, testNIF, yesterday, today, "").Return([]entity.Invoice{
		inv(today, "10", "100"),
		inv(today, "10", "50"),
		inv(yesterday, "10", "30"),
	}, nil).Once()
	svc, _ := newService(repo, nil)

	report, err := svc.Summary(context.Background(), query(t, "", period.Today))

	require.NoError(t, err)
	assert.Equal(t, "Hoy", report.Period.Name)
	assert.Equal(t, "2026-10-14", report.Period.CurrentStart)
	assert.Equal(t, "2026-10-13", report.Period.PriorEnd)

	sales := report.Metrics.TotalSales
	assertDec(t, "150", sales.Current)
	assertDec(t, "30", sales.Prior)
	assertDec(t, "120", sales.Delta)
	assertDec(t, "400", sales.Percent)
	assert.Equal(t, "UP", sales.Trend)
	assert.Equal(t, "+400.0%", sales.Label)
	assert.Equal(t, "#28a745", sales.Color)

	assertDec(t, "2", report.Metrics.Receipts.Current)
	assertDec(t, "75", report.Metrics.AverageTicket.Current)
	assert.Equal(t, "FLAT", report.Metrics.ItemsSold.Trend)

	require.Len(t, report.Hourly, 1)
	assert.Equal(t, "10:00", report.Hourly[0].Hour)
	assert.Equal(t, 2, report.Hourly[0].CurrentCount)
	assert.Equal(t, 1, report.Hourly[0].PriorCount)
	repo.AssertExpectations(t)
}

func TestSummary_CacheEvitaSegundaConsulta(t *testing.T) {
	repo := new(mockInvoiceRepo)
	repo.On("FetchByDateRange", mock.Anything, testNIF, mock.Anything, mock.Anything, "").
		Return([]entity.Invoice{inv(today, "09:15", "80"), inv(yesterday, "09:00", "100")}, nil)
	svc, mem := newService(repo, nil)
	q := query(t, "", period.Today)

	first, err := svc.Summary(context.Background(), q)
	require.NoError(t, err)
	second, err := svc.Summary(context.Background(), q)
	require.NoError(t, err)

	repo.AssertNumberOfCalls(t, "FetchByDateRange", 1)
	assert.Equal(t, []string{"stats/resumo/123456789/0"}, mem.Keys("stats/"))
	assertDec(t, first.Metrics.TotalSales.Percent.String(), second.Metrics.TotalSales.Percent)
	assertDec(t, "-20", second.Metrics.TotalSales.Percent)
	assert.Equal(t, "DOWN", second.Metrics.TotalSales.Trend)
	assert.Equal(t, "#dc3545", second.Metrics.TotalSales.Color)
}

func TestSummary_ErrorDelRepositorioNoSeCachea(t *testing.T) {
	repo := new(mockInvoiceRepo)
	repo.On("FetchByDateRange", mock.Anything, testNIF, mock.Anything, mock.Anything, "").
		Return(nil, errors.New("conexión rechazada")).Once()
	repo.On("FetchByDateRange", mock.Anything, testNIF, mock.Anything, mock.Anything, "").
		Return([]entity.Invoice{}, nil).Once()
	svc, mem := newService(repo, nil)
	q := query(t, "", period.Today)

	_, err := svc.Summary(context.Background(), q)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDataFetch)
	assert.Empty(t, mem.Keys("stats/"))

	report, err := svc.Summary(context.Background(), q)
	require.NoError(t, err)
	assertDec(t, "0", report.Metrics.TotalSales.Percent)
	assert.Empty(t, report.Hourly)
	repo.AssertExpectations(t)
}

func TestSummary_IncluyeUltimaActualizacion(t *testing.T) {
	repo := new(mockInvoiceRepo)
	repo.On("FetchByDateRange", mock.Anything, testNIF, mock.Anything, mock.Anything, "Centro").
		Return([]entity.Invoice{}, nil)
	svc, _ := newService(repo, nil)

	stamp := svc.MarkUpdated(context.Background(), testNIF, "Centro")
	report, err := svc.Summary(context.Background(), query(t, "Centro", period.Week))

	require.NoError(t, err)
	assert.Equal(t, "14-10 15:30", stamp)
	assert.Equal(t, stamp, report.LastUpdated)
	assert.Equal(t, "Centro", report.Branch)
}

// ──────────────────────────────────────────────────────────────────────────────
// Products
// ──────────────────────────────────────────────────────────────────────────────

func TestProducts_RankingLimiteYVarianza(t *testing.T) {
	repo := new(mockInvoiceRepo)
	repo.On("FetchByDateRange", mock.Anything, testNIF, mock.Anything, mock.Anything, "").Return([]entity.Invoice{
		inv(today, "10:00", "10", item("Café", 4, "1.50"), item("Tostada", 1, "2")),
		inv(today, "11:00", "5", item("Zumo", 1, "3")),
		inv(yesterday, "11:00", "5", item("Café", 2, "1.50")),
	}, nil).Once()
	svc, _ := newService(repo, nil)
	q := query(t, "", period.Today)

	top2, err := svc.Products(context.Background(), q, 2)
	require.NoError(t, err)
	require.Len(t, top2.Products, 2)
	assert.Equal(t, 3, top2.TotalProducts)
	assert.Equal(t, "Café", top2.Products[0].Name)
	assert.Equal(t, 1, top2.Products[0].Rank)
	assertDec(t, "6", top2.Products[0].Amount)
	assertDec(t, "54.55", top2.Products[0].SharePct)
	assertDec(t, "11", top2.Amount.Current)
	assertDec(t, "3", top2.Amount.Prior)

	all, err := svc.Products(context.Background(), q, 0)
	require.NoError(t, err)
	assert.Len(t, all.Products, 3, "el caché guarda el ranking completo")
	repo.AssertExpectations(t)
}

// ──────────────────────────────────────────────────────────────────────────────
// Heatmap
// ──────────────────────────────────────────────────────────────────────────────

func TestHeatmap_BucketsIndependientes(t *testing.T) {
	repo := new(mockInvoiceRepo)
	repo.On("FetchByDateRange", mock.Anything, testNIF, mock.Anything, mock.Anything, "").Return([]entity.Invoice{
		inv(today, "09:10", "20"),
		inv(today, "09:40", "20"),
		inv(today, "18:00", "100"),
		inv(today, "18", "999"), // sin ':' no entra en el mapa
		inv(yesterday, "12:00", "10"),
	}, nil)
	svc, _ := newService(repo, nil)

	report, err := svc.Heatmap(context.Background(), query(t, "", period.Today))

	require.NoError(t, err)
	require.Len(t, report.Current.Cells, 2)
	require.NotNil(t, report.Current.PeakByVolume)
	assert.Equal(t, "18:00", report.Current.PeakByVolume.Hour)
	assert.Equal(t, "Miércoles", report.Current.PeakByVolume.Weekday)
	assert.Equal(t, 2, report.Current.PeakByVolume.WeekdayNum)
	assert.Equal(t, "09:00", report.Current.PeakByCount.Hour)
	assert.Equal(t, 3, report.Current.TotalCount)
	assertDec(t, "140", report.Current.TotalVolume)

	require.Len(t, report.Prior.Cells, 1)
	assert.Equal(t, "Martes", report.Prior.Cells[0].Weekday)
	assertDec(t, "1300", report.Volume.Percent)
	assertDec(t, "2", report.Count.Delta)
}

// ──────────────────────────────────────────────────────────────────────────────
// FullAnalysis
// ──────────────────────────────────────────────────────────────────────────────

func fullAnalysisData() []entity.Invoice {
	a := inv(today, "10:00", "30", item("Pan", 10, "3"))
	a.Branch = "Centro"
	b := inv(today, "12:00", "20", item("Leche", 2, "10"))
	b.Branch = "Norte"
	c := inv(yesterday, "10:00", "100", item("Pan", 5, "20"))
	c.Branch = "Centro"
	return []entity.Invoice{a, b, c}
}

func TestFullAnalysis_ConIA(t *testing.T) {
	repo := new(mockInvoiceRepo)
	repo.On("FetchByDateRange", mock.Anything, testNIF, mock.Anything, mock.Anything, "").Return(fullAnalysisData(), nil)
	llm := new(mockLLM)
	llm.On("GenerateInsight", mock.Anything, mock.MatchedBy(func(s *dto.InsightSummary) bool {
		return s.NIF == testNIF && s.Current.Invoices == 2 && s.Prior.Invoices == 1
	}), mock.Anything).Return(&dto.InsightResult{Content: "Las ventas cayeron.", Model: "test-model", TokensUsed: 42}, nil).Once()
	svc, _ := newService(repo, llm)

	report, err := svc.FullAnalysis(context.Background(), query(t, "", period.Today))

	require.NoError(t, err)
	assert.Equal(t, dto.AnalysisKindAI, report.Analysis.Kind)
	assert.Equal(t, "Las ventas cayeron.", report.Analysis.Content)
	assert.Equal(t, "test-model", report.Analysis.Model)

	require.Len(t, report.Alerts, 1)
	assert.Contains(t, report.Alerts[0], "cayó")
	require.Len(t, report.Insights, 2)
	assert.Contains(t, report.Insights[0], "Miércoles")
	assert.Contains(t, report.Insights[1], "Pan")

	require.Len(t, report.Branches, 2)
	assert.Equal(t, "Centro", report.Branches[0].Branch)
	assertDec(t, "60", report.Branches[0].SharePct)

	require.Len(t, report.Last7Days, 1, "solo días del período actual")
	assert.Equal(t, "2026-10-14", report.Last7Days[0].Date)
	assertDec(t, "50", report.Last7Days[0].Volume)
	assert.Equal(t, 2, report.Last7Days[0].Count)

	assertDec(t, "2", report.DetailedStats.InvoicesPerDay)
	assertDec(t, "25", report.DetailedStats.VolumePerInvoice)
	require.NotNil(t, report.DetailedStats.TopProduct)
	assert.Equal(t, "Pan", report.DetailedStats.TopProduct.Name)
	assert.Equal(t, 1, report.Comparison.Prior.TotalInvoices)
	llm.AssertExpectations(t)
}

func TestFullAnalysis_FalloDeIADegradaAPlaceholder(t *testing.T) {
	repo := new(mockInvoiceRepo)
	repo.On("FetchByDateRange", mock.Anything, testNIF, mock.Anything, mock.Anything, "").Return(fullAnalysisData(), nil)
	llm := new(mockLLM)
	llm.On("GenerateInsight", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("503 overloaded"))
	svc, _ := newService(repo, llm)

	report, err := svc.FullAnalysis(context.Background(), query(t, "", period.Today))

	require.NoError(t, err, "la IA nunca hace fallar la respuesta principal")
	assert.Equal(t, dto.AnalysisKindError, report.Analysis.Kind)
	assert.Contains(t, report.Analysis.Note, "503 overloaded")
	assertDec(t, "50", report.Metrics.TotalSales.Current)

	_, err = svc.FullAnalysis(context.Background(), query(t, "", period.Today))
	require.NoError(t, err)
	llm.AssertNumberOfCalls(t, "GenerateInsight", 2)
	repo.AssertNumberOfCalls(t, "FetchByDateRange", 2)
}

func TestFullAnalysis_ConIASeCachea(t *testing.T) {
	repo := new(mockInvoiceRepo)
	repo.On("FetchByDateRange", mock.Anything, testNIF, mock.Anything, mock.Anything, "").Return(fullAnalysisData(), nil)
	llm := new(mockLLM)
	llm.On("GenerateInsight", mock.Anything, mock.Anything, mock.Anything).
		Return(&dto.InsightResult{Content: "ok", Model: "test-model"}, nil)
	svc, _ := newService(repo, llm)

	for i := 0; i < 2; i++ {
		report, err := svc.FullAnalysis(context.Background(), query(t, "", period.Today))
		require.NoError(t, err)
		assert.Equal(t, dto.AnalysisKindAI, report.Analysis.Kind)
	}
	llm.AssertNumberOfCalls(t, "GenerateInsight", 1)
	repo.AssertNumberOfCalls(t, "FetchByDateRange", 1)
}

func TestFullAnalysis_SinIAConfigurada(t *testing.T) {
	repo := new(mockInvoiceRepo)
	repo.On("FetchByDateRange", mock.Anything, testNIF, mock.Anything, mock.Anything, "Centro").Return([]entity.Invoice{}, nil)
	svc, _ := newService(repo, nil)

	report, err := svc.FullAnalysis(context.Background(), query(t, "Centro", period.Today))

	require.NoError(t, err)
	assert.Equal(t, dto.AnalysisKindDisabled, report.Analysis.Kind)
	assert.Empty(t, report.Branches, "con filial no hay desglose")
	assert.Empty(t, report.Alerts)
	assert.Nil(t, report.DetailedStats.TopProduct)
	assert.Nil(t, report.DetailedStats.BusiestSlot)
}

func TestInsightSummary_NoLlamaALaIA(t *testing.T) {
	repo := new(mockInvoiceRepo)
	repo.On("FetchByDateRange", mock.Anything, testNIF, mock.Anything, mock.Anything, "").Return(fullAnalysisData(), nil)
	llm := new(mockLLM)
	svc, _ := newService(repo, llm)

	summary, err := svc.InsightSummary(context.Background(), query(t, "", period.Today))

	require.NoError(t, err)
	assertDec(t, "50", summary.Current.TotalSales)
	assertDec(t, "100", summary.Prior.TotalSales)
	assert.Len(t, summary.TopProducts, 2)
	llm.AssertNotCalled(t, "GenerateInsight", mock.Anything, mock.Anything, mock.Anything)
}

// ──────────────────────────────────────────────────────────────────────────────
// Invalidación
// ──────────────────────────────────────────────────────────────────────────────

func TestInvalidate_SinFilialRecorreFilialesConocidas(t *testing.T) {
	ctx := context.Background()
	repo := new(mockInvoiceRepo)
	repo.On("ListBranches", mock.Anything, testNIF).Return([]string{"Centro", ""}, nil)
	svc, mem := newService(repo, nil)

	keep := analytics.ResultKey(analytics.ViewSummary, "999", "", period.Today)
	for _, k := range []string{
		analytics.ResultKey(analytics.ViewSummary, testNIF, "", period.Today),
		analytics.ResultKey(analytics.ViewHeatmap, testNIF, "Centro", period.Year),
		analytics.ResultKey(analytics.ViewFullAnalysis, testNIF, "", period.Month),
		keep,
	} {
		require.NoError(t, mem.Set(ctx, k, []byte("{}"), 0))
	}

	removed, err := svc.Invalidate(ctx, testNIF, "")

	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.Equal(t, []string{keep}, mem.Keys(""))
}

func TestInvalidate_ConFilialNoListaFiliales(t *testing.T) {
	ctx := context.Background()
	repo := new(mockInvoiceRepo)
	svc, mem := newService(repo, nil)
	require.NoError(t, mem.Set(ctx, analytics.ResultKey(analytics.ViewProducts, testNIF, "Norte", period.Week), []byte("{}"), 0))
	require.NoError(t, mem.Set(ctx, analytics.ResultKey(analytics.ViewProducts, testNIF, "Sul", period.Week), []byte("{}"), 0))

	removed, err := svc.Invalidate(ctx, testNIF, "Norte")

	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Len(t, mem.Keys("products/"), 1)
	repo.AssertNotCalled(t, "ListBranches", mock.Anything, mock.Anything)
}

func TestInvalidate_ErrorAlListarFiliales(t *testing.T) {
	repo := new(mockInvoiceRepo)
	repo.On("ListBranches", mock.Anything, testNIF).Return(nil, errors.New("timeout"))
	svc, _ := newService(repo, nil)

	_, err := svc.Invalidate(context.Background(), testNIF, "")

	assert.ErrorIs(t, err, domain.ErrDataFetch)
}

func TestClearFullAnalysis(t *testing.T) {
	ctx := context.Background()
	svc, mem := newService(new(mockInvoiceRepo), nil)
	for _, c := range []period.Code{period.Today, period.Week, period.Year} {
		require.NoError(t, mem.Set(ctx, analytics.ResultKey(analytics.ViewFullAnalysis, testNIF, "", c), []byte("{}"), 0))
	}

	week := period.Week
	one, err := svc.ClearFullAnalysis(ctx, testNIF, "", &week)
	require.NoError(t, err)
	assert.Equal(t, []string{"analise-completa/123456789/2"}, one)

	rest, err := svc.ClearFullAnalysis(ctx, testNIF, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"analise-completa/123456789/0", "analise-completa/123456789/5"}, rest)

	bad := period.Code(9)
	_, err = svc.ClearFullAnalysis(ctx, testNIF, "", &bad)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestLastUpdated_SinRegistro(t *testing.T) {
	svc, _ := newService(new(mockInvoiceRepo), nil)

	_, ok := svc.LastUpdated(context.Background(), testNIF, "")

	assert.False(t, ok)
}
