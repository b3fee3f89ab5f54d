// Package cli expone el motor de analítica por línea de comandos: las mismas
// vistas que la API HTTP, sin pasar por autenticación, más la emisión de
// tokens de desarrollo.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/faturas-analytics/internal/application/analytics"
	"github.com/jhoicas/faturas-analytics/internal/application/dto"
)

const commandTimeout = 60 * time.Second

// Reader vistas que la CLI puede imprimir (implementado por *analytics.Service).
type Reader interface {
	Summary(ctx context.Context, q analytics.Query) (*dto.SummaryReportDTO, error)
	Products(ctx context.Context, q analytics.Query, limit int) (*dto.ProductsReportDTO, error)
	Heatmap(ctx context.Context, q analytics.Query) (*dto.HeatmapReportDTO, error)
}

// Clearer invalidación de caché (implementado por *analytics.CacheUseCase).
type Clearer interface {
	Clear(ctx context.Context, nif, branch string) (*dto.CacheClearDTO, error)
}

// Services lo que necesitan los comandos que consultan datos.
type Services struct {
	Reader  Reader
	Clearer Clearer
}

// Loader construye los servicios bajo demanda; close libera conexiones.
// Así "token" funciona sin base de datos.
type Loader func(ctx context.Context) (svc *Services, close func(), err error)

// TokenIssuer firma tokens de desarrollo (implementado por *auth.TokenUseCase).
type TokenIssuer interface {
	Issue(userID, role string, expMinutes int) (*dto.TokenResponse, error)
}

// NewRootCmd arma el árbol de comandos.
func NewRootCmd(load Loader, issuer TokenIssuer) *cobra.Command {
	root := &cobra.Command{
		Use:           "faturas",
		Short:         "Analítica comparativa de ventas por período",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newSummaryCmd(load),
		newProductsCmd(load),
		newHeatmapCmd(load),
		newClearCacheCmd(load),
		newTokenCmd(issuer),
	)
	return root
}

// scopeFlags flags comunes a las consultas.
type scopeFlags struct {
	nif    string
	branch string
	period int
}

func (f *scopeFlags) register(cmd *cobra.Command, withPeriod bool) {
	cmd.Flags().StringVar(&f.nif, "nif", "", "NIF del negocio")
	cmd.Flags().StringVar(&f.branch, "filial", "", "Filial (vacío = todas)")
	if withPeriod {
		cmd.Flags().IntVar(&f.period, "periodo", 0, "0=hoy 1=ayer 2=semana 3=mes 4=trimestre 5=año")
	}
	_ = cmd.MarkFlagRequired("nif")
}

func (f *scopeFlags) query() (analytics.Query, error) {
	return analytics.ParseQuery(f.nif, f.branch, fmt.Sprint(f.period))
}

// withServices ejecuta fn con timeout y servicios cargados.
func withServices(cmd *cobra.Command, load Loader, fn func(ctx context.Context, svc *Services) (any, error)) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	svc, closeFn, err := load(ctx)
	if err != nil {
		return fmt.Errorf("inicializar servicios: %w", err)
	}
	if closeFn != nil {
		defer closeFn()
	}
	out, err := fn(ctx, svc)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
