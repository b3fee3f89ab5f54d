package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSummaryCmd(load Loader) *cobra.Command {
	var f scopeFlags
	cmd := &cobra.Command{
		Use:   "resumen",
		Short: "Resumen comparativo (ventas, facturas, artículos, ticket medio)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := f.query()
			if err != nil {
				return err
			}
			return withServices(cmd, load, func(ctx context.Context, svc *Services) (any, error) {
				return svc.Reader.Summary(ctx, q)
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func newProductsCmd(load Loader) *cobra.Command {
	var (
		f     scopeFlags
		limit int
	)
	cmd := &cobra.Command{
		Use:   "productos",
		Short: "Ranking de productos del período actual",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return fmt.Errorf("--limite no puede ser negativo")
			}
			q, err := f.query()
			if err != nil {
				return err
			}
			return withServices(cmd, load, func(ctx context.Context, svc *Services) (any, error) {
				return svc.Reader.Products(ctx, q, limit)
			})
		},
	}
	f.register(cmd, true)
	cmd.Flags().IntVar(&limit, "limite", 10, "Máx. productos (0 = todos)")
	return cmd
}

func newHeatmapCmd(load Loader) *cobra.Command {
	var f scopeFlags
	cmd := &cobra.Command{
		Use:   "mapa-calor",
		Short: "Mapa de calor hora × día de la semana",
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := f.query()
			if err != nil {
				return err
			}
			return withServices(cmd, load, func(ctx context.Context, svc *Services) (any, error) {
				return svc.Reader.Heatmap(ctx, q)
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func newClearCacheCmd(load Loader) *cobra.Command {
	var f scopeFlags
	cmd := &cobra.Command{
		Use:   "limpiar-cache",
		Short: "Invalida las vistas cacheadas de un negocio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, load, func(ctx context.Context, svc *Services) (any, error) {
				return svc.Clearer.Clear(ctx, f.nif, f.branch)
			})
		},
	}
	f.register(cmd, false)
	return cmd
}

func newTokenCmd(issuer TokenIssuer) *cobra.Command {
	var (
		userID string
		role   string
		exp    int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un JWT de desarrollo",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tok, err := issuer.Issue(userID, role, exp)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), tok)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
			return err
		},
	}
	cmd.Flags().StringVar(&userID, "usuario", "", "ID del usuario")
	cmd.Flags().StringVar(&role, "rol", "analista", "admin | analista | integrador")
	cmd.Flags().IntVar(&exp, "expira", 0, "Minutos de validez (0 = JWT_EXPIRATION_MINUTES)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Imprime token, rol y expiración en JSON")
	_ = cmd.MarkFlagRequired("usuario")
	return cmd
}
