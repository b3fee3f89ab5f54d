package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jhoicas/faturas-analytics/internal/application/analytics"
	"github.com/jhoicas/faturas-analytics/internal/application/dto"
	"github.com/jhoicas/faturas-analytics/internal/application/ports"
	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
	"github.com/jhoicas/faturas-analytics/internal/domain/period"
	"github.com/jhoicas/faturas-analytics/internal/infrastructure/cache"
)

// ──────────────────────────────────────────────────────────────────────────────
// Mocks
// ──────────────────────────────────────────────────────────────────────────────

type mockInvoiceRepo struct {
	mock.Mock
}

func (m *mockInvoiceRepo) FetchByDateRange(ctx context.Context, nif string, start, end time.Time, branch string) ([]entity.Invoice, error) {
	args := m.Called(ctx, nif, start, end, branch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) ListByNIF(ctx context.Context, nif string, limit int) ([]entity.Invoice, error) {
	args := m.Called(ctx, nif, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) GetByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) ListBranches(ctx context.Context, nif string) ([]string, error) {
	args := m.Called(ctx, nif)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) GenerateInsight(ctx context.Context, summary *dto.InsightSummary, prompt string) (*dto.InsightResult, error) {
	args := m.Called(ctx, summary, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.InsightResult), args.Error(1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

const testNIF = "123456789"

// now: miércoles 14/10/2026 15:30 UTC.
var (
	now       = time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)
	today     = period.Civil(now)
	yesterday = today.AddDate(0, 0, -1)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msg ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "esperado %s, obtenido %s %v", want, got.String(), msg)
}

func inv(day time.Time, hour, total string, items ...entity.InvoiceItem) entity.Invoice {
	i := entity.Invoice{NIF: testNIF, Date: day, Time: hour, Items: items}
	if total != "" {
		i.Total = decimal.NewNullDecimal(dec(total))
	}
	return i
}

func item(name string, qty int64, price string) entity.InvoiceItem {
	return entity.InvoiceItem{ProductName: name, Quantity: qty, UnitPrice: dec(price)}
}

// newService arma el servicio con caché en memoria y reloj fijo.
func newService(repo *mockInvoiceRepo, llm *mockLLM) (*analytics.Service, *cache.MemoryCache) {
	mem := cache.NewMemoryCache().WithClock(func() time.Time { return now })
	resolver := period.NewResolver(time.UTC, func() time.Time { return now })
	var port ports.LLMService
	if llm != nil {
		port = llm
	}
	svc := analytics.NewService(repo, mem, resolver, port, zerolog.Nop(), analytics.Options{
		TTL:   3 * time.Minute,
		Clock: func() time.Time { return now },
	})
	return svc, mem
}

func query(t *testing.T, branch string, code period.Code) analytics.Query {
	t.Helper()
	q, err := analytics.NewQuery(testNIF, branch, code)
	if err != nil {
		t.Fatalf("query inválida: %v", err)
	}
	return q
}
