package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/faturas-analytics/internal/domain"
	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
	"github.com/jhoicas/faturas-analytics/internal/domain/repository"
	"github.com/jhoicas/faturas-analytics/internal/infrastructure/postgres"
	"github.com/jhoicas/faturas-analytics/pkg/config"
)

// Requiere una base con migrations/001_init.sql aplicado.
func TestInvoiceRepo_Integration(t *testing.T) {
	databaseURL := os.Getenv("FATURAS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set FATURAS_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: databaseURL})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	nif := fmt.Sprintf("9%08d", time.Now().UnixNano()%100000000)
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM invoices WHERE nif = $1`, nif)
	})

	day := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	inv := &entity.Invoice{
		Number: "IT-" + nif,
		NIF:    nif,
		Branch: "Lisboa",
		Date:   day,
		Time:   "10:30:00",
		Total:  decimal.NewNullDecimal(decimal.RequireFromString("7.50")),
		Items: []entity.InvoiceItem{
			{ProductName: "Café", Quantity: 3, UnitPrice: decimal.RequireFromString("2.50"), LineTotal: decimal.RequireFromString("7.50")},
			{ProductName: "Água", Quantity: 0, UnitPrice: decimal.Zero, LineTotal: decimal.Zero},
		},
	}

	tx := postgres.NewTxRunner(pool)
	require.NoError(t, tx.RunInvoices(ctx, func(repo repository.InvoiceRepository) error {
		return repo.Create(ctx, inv)
	}))

	repo := postgres.NewInvoiceRepository(pool)

	err = repo.Create(ctx, &entity.Invoice{Number: inv.Number, NIF: nif, Date: day})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	got, err := repo.FetchByDateRange(ctx, nif, day, day, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Items, 2)
	assert.True(t, got[0].Total.Decimal.Equal(decimal.RequireFromString("7.50")))

	none, err := repo.FetchByDateRange(ctx, nif, day, day, "Porto")
	require.NoError(t, err)
	assert.Empty(t, none)

	byNumber, err := repo.GetByNumber(ctx, inv.Number)
	require.NoError(t, err)
	require.NotNil(t, byNumber)
	assert.Equal(t, "Lisboa", byNumber.Branch)

	missing, err := repo.GetByNumber(ctx, "no-existe-"+nif)
	require.NoError(t, err)
	assert.Nil(t, missing)

	branches, err := repo.ListBranches(ctx, nif)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lisboa"}, branches)
}
