package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/faturas-analytics/internal/application/analytics"
	"github.com/jhoicas/faturas-analytics/internal/application/auth"
	"github.com/jhoicas/faturas-analytics/internal/domain/period"
	infraai "github.com/jhoicas/faturas-analytics/internal/infrastructure/ai"
	"github.com/jhoicas/faturas-analytics/internal/infrastructure/cache"
	"github.com/jhoicas/faturas-analytics/internal/infrastructure/postgres"
	"github.com/jhoicas/faturas-analytics/internal/interfaces/cli"
	"github.com/jhoicas/faturas-analytics/pkg/config"
	"github.com/jhoicas/faturas-analytics/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: os.Stderr})

	load := func(ctx context.Context) (*cli.Services, func(), error) {
		loc, err := cfg.Analytics.Location()
		if err != nil {
			return nil, nil, err
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		resultCache, closeCache, err := cache.FromConfig(ctx, cfg.Cache, cfg.Redis)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		llm, err := infraai.NewFromConfig(cfg.AI)
		if err != nil {
			_ = closeCache()
			pool.Close()
			return nil, nil, err
		}

		svc := analytics.NewService(
			postgres.NewInvoiceRepository(pool),
			resultCache,
			period.NewResolver(loc, nil),
			llm,
			log.Component("cli"),
			analytics.Options{
				TTL:          cfg.Cache.TTL(),
				TopProducts:  cfg.Analytics.TopProducts,
				HeatmapPeaks: cfg.Analytics.HeatmapPeaks,
				AITimeout:    cfg.AI.Timeout(),
			},
		)
		// Sin warmer: la CLI termina antes de que el recálculo pueda correr.
		closeAll := func() {
			_ = closeCache()
			pool.Close()
		}
		return &cli.Services{Reader: svc, Clearer: analytics.NewCacheUseCase(svc, nil)}, closeAll, nil
	}

	issuer := auth.NewTokenUseCase(auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	root := cli.NewRootCmd(load, issuer)
	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("comando fallido")
		os.Exit(1)
	}
}
