package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/faturas-analytics/internal/application/analytics"
	"github.com/jhoicas/faturas-analytics/internal/application/invoices"
	"github.com/jhoicas/faturas-analytics/internal/application/usecase"
	"github.com/jhoicas/faturas-analytics/internal/domain/period"
	infraai "github.com/jhoicas/faturas-analytics/internal/infrastructure/ai"
	"github.com/jhoicas/faturas-analytics/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/faturas-analytics/internal/infrastructure/pdf"
	"github.com/jhoicas/faturas-analytics/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/faturas-analytics/internal/interfaces/http"
	"github.com/jhoicas/faturas-analytics/pkg/config"
	"github.com/jhoicas/faturas-analytics/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}
	loc, err := cfg.Analytics.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria de analítica")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	resultCache, closeCache, err := cache.FromConfig(ctx, cfg.Cache, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Cache.Backend).Msg("caché de resultados")
	}
	defer func() { _ = closeCache() }()

	llm, err := infraai.NewFromConfig(cfg.AI)
	if err != nil {
		log.Fatal().Err(err).Msg("proveedor de IA")
	}
	if llm == nil {
		log.Warn().Msg("IA desactivada: los análisis narrativos devolverán un placeholder")
	}

	invoiceRepo := postgres.NewInvoiceRepository(pool)
	establishmentRepo := postgres.NewEstablishmentRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	resolver := period.NewResolver(loc, nil)

	analyticsSvc := analytics.NewService(invoiceRepo, resultCache, resolver, llm, log.Component("analytics"), analytics.Options{
		TTL:          cfg.Cache.TTL(),
		TopProducts:  cfg.Analytics.TopProducts,
		HeatmapPeaks: cfg.Analytics.HeatmapPeaks,
		AITimeout:    cfg.AI.Timeout(),
	})
	warmer := analytics.NewWarmer(analyticsSvc, cfg.Warmup.Workers, cfg.Warmup.QueueSize, log.Component("warmer"))
	warmer.Start(ctx)
	cacheUC := analytics.NewCacheUseCase(analyticsSvc, warmer)

	listUC := invoices.NewListUseCase(invoiceRepo, resolver)
	pdfUC := invoices.NewPDFUseCase(invoiceRepo, infrapdf.NewMarotoPDFGenerator())
	ingestUC := invoices.NewIngestUseCase(txRunner, cacheUC, log.Component("ingest"))

	accessSvc := usecase.NewAccessService(establishmentRepo)
	insightUC := usecase.NewInsightUseCase(analyticsSvc, llm, resultCache, log.Component("insight"), cfg.AI.Timeout())

	aiLimiter := httpRouter.NewBusinessRateLimiter(httpRouter.RateLimiterConfig{
		RequestsPerMinute: cfg.RateLimit.AIRequestsPerMinute,
		Burst:             cfg.RateLimit.AIBurst,
	})
	defer aiLimiter.Close()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 60, // el análisis completo con IA puede tardar
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Faturas Analytics API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Analytics:      analyticsSvc,
		Cache:          cacheUC,
		Invoices:       listUC,
		InvoicePDF:     pdfUC,
		Ingest:         ingestUC,
		Insights:       insightUC,
		Establishments: accessSvc,
		Access:         accessSvc,
		AIRateLimiter:  aiLimiter,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	warmer.Stop()

	log.Info().Msg("aplicación detenida")
}
