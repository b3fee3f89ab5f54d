package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/faturas-analytics/internal/application/analytics"
	"github.com/jhoicas/faturas-analytics/internal/application/auth"
	"github.com/jhoicas/faturas-analytics/internal/application/dto"
	"github.com/jhoicas/faturas-analytics/internal/domain"
	"github.com/jhoicas/faturas-analytics/internal/domain/period"
	"github.com/jhoicas/faturas-analytics/internal/interfaces/cli"
	"github.com/jhoicas/faturas-analytics/pkg/jwt"
)

const (
	testNIF    = "500100200"
	testSecret = "cli-test-secret"
)

type mockReader struct{ mock.Mock }

func (m *mockReader) Summary(ctx context.Context, q analytics.Query) (*dto.SummaryReportDTO, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SummaryReportDTO), args.Error(1)
}

func (m *mockReader) Products(ctx context.Context, q analytics.Query, limit int) (*dto.ProductsReportDTO, error) {
	args := m.Called(ctx, q, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProductsReportDTO), args.Error(1)
}

func (m *mockReader) Heatmap(ctx context.Context, q analytics.Query) (*dto.HeatmapReportDTO, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.HeatmapReportDTO), args.Error(1)
}

type mockClearer struct{ mock.Mock }

func (m *mockClearer) Clear(ctx context.Context, nif, branch string) (*dto.CacheClearDTO, error) {
	args := m.Called(ctx, nif, branch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CacheClearDTO), args.Error(1)
}

func run(t *testing.T, load cli.Loader, args ...string) (string, error) {
	t.Helper()
	issuer := auth.NewTokenUseCase(auth.JWTConfig{Secret: testSecret, Issuer: "test", ExpMinutes: 60})
	root := cli.NewRootCmd(load, issuer)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func loaderFor(reader *mockReader, clearer *mockClearer) (cli.Loader, *bool) {
	closed := false
	return func(context.Context) (*cli.Services, func(), error) {
		return &cli.Services{Reader: reader, Clearer: clearer}, func() { closed = true }, nil
	}, &closed
}

func TestResumen_ImprimeJSON(t *testing.T) {
	reader := new(mockReader)
	reader.On("Summary", mock.Anything, analytics.Query{NIF: testNIF, Branch: "Centro", Code: period.Month}).
		Return(&dto.SummaryReportDTO{NIF: testNIF, Branch: "Centro"}, nil)
	load, closed := loaderFor(reader, nil)

	out, err := run(t, load, "resumen", "--nif", testNIF, "--filial", "Centro", "--periodo", "3")
	require.NoError(t, err)

	var got dto.SummaryReportDTO
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Centro", got.Branch)
	assert.True(t, *closed, "las conexiones se liberan al terminar")
}

func TestResumen_PeriodoInvalidoNoCargaServicios(t *testing.T) {
	called := false
	load := func(context.Context) (*cli.Services, func(), error) {
		called = true
		return nil, nil, errors.New("no debería llamarse")
	}

	_, err := run(t, load, "resumen", "--nif", testNIF, "--periodo", "7")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
	assert.False(t, called)
}

func TestProductos_Limite(t *testing.T) {
	reader := new(mockReader)
	reader.On("Products", mock.Anything, analytics.Query{NIF: testNIF, Code: period.Today}, 3).
		Return(&dto.ProductsReportDTO{NIF: testNIF}, nil)
	load, _ := loaderFor(reader, nil)

	_, err := run(t, load, "productos", "--nif", testNIF, "--limite", "3")
	require.NoError(t, err)
	reader.AssertExpectations(t)

	_, err = run(t, load, "productos", "--nif", testNIF, "--limite", "-1")
	assert.Error(t, err)
}

func TestMapaCalor_PropagaError(t *testing.T) {
	reader := new(mockReader)
	reader.On("Heatmap", mock.Anything, mock.Anything).Return(nil, domain.ErrDataFetch)
	load, _ := loaderFor(reader, nil)

	_, err := run(t, load, "mapa-calor", "--nif", testNIF)
	assert.ErrorIs(t, err, domain.ErrDataFetch)
}

func TestLimpiarCache(t *testing.T) {
	clearer := new(mockClearer)
	clearer.On("Clear", mock.Anything, testNIF, "").Return(&dto.CacheClearDTO{NIF: testNIF, KeysRemoved: 24}, nil)
	load, _ := loaderFor(nil, clearer)

	out, err := run(t, load, "limpiar-cache", "--nif", testNIF)
	require.NoError(t, err)
	assert.Contains(t, out, `"keys_removed": 24`)
}

func TestNifObligatorio(t *testing.T) {
	load, _ := loaderFor(new(mockReader), nil)
	_, err := run(t, load, "resumen")
	assert.Error(t, err)
}

func TestToken_FirmaConRol(t *testing.T) {
	load := func(context.Context) (*cli.Services, func(), error) {
		return nil, nil, errors.New("token no necesita servicios")
	}

	out, err := run(t, load, "token", "--usuario", "u-1", "--rol", "integrador")
	require.NoError(t, err)

	userID, role, err := jwt.Parse(testSecret, strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, "integrador", role)
}

func TestToken_RolDesconocido(t *testing.T) {
	_, err := run(t, nil, "token", "--usuario", "u-1", "--rol", "vendedor")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
