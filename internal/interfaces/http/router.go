package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Analytics      AnalyticsReader
	Cache          CacheManager
	Invoices       InvoiceLister
	InvoicePDF     InvoicePDFDownloader
	Ingest         InvoiceIngester
	Insights       InsightService
	Establishments EstablishmentLister
	Access         accessChecker
	AIRateLimiter  *BusinessRateLimiter // nil = sin límite
	JWTSecret      string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las que
// reciben un NIF verifican además que el usuario tenga acceso a ese negocio.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	readers := RequireRole(entity.RoleAdmin, entity.RoleAnalyst)
	business := RequireBusinessAccess(deps.Access)

	// Negocios del usuario (no lleva NIF)
	estHandler := NewEstablishmentHandler(deps.Establishments)
	api.Get("/estabelecimentos", readers, estHandler.List)

	// Analítica comparativa
	analyticsHandler := NewAnalyticsHandler(deps.Analytics, deps.Cache)
	api.Get("/stats/resumo", readers, business, analyticsHandler.Summary)
	api.Get("/products", readers, business, analyticsHandler.Products)
	api.Get("/heatmap", readers, business, analyticsHandler.Heatmap)
	api.Get("/analise-completa", readers, business, analyticsHandler.FullAnalysis)
	api.Get("/ultima-atualizacao", readers, business, analyticsHandler.LastUpdated)
	api.Delete("/limparcache", readers, business, analyticsHandler.ClearCache)
	api.Delete("/limparcache-analise-completa", readers, business, analyticsHandler.ClearFullAnalysis)

	// Facturas. La ingesta admite cualquier NIF: la restricción es por rol.
	invoiceHandler := NewInvoiceHandler(deps.Invoices, deps.InvoicePDF, deps.Ingest)
	api.Get("/faturas", readers, business, invoiceHandler.List)
	api.Get("/faturas/todas", readers, business, invoiceHandler.ListAll)
	api.Get("/faturas/pdf", readers, business, invoiceHandler.PDF)
	api.Post("/faturas", RequireRole(entity.RoleAdmin, entity.RoleIntegrator), invoiceHandler.Ingest)

	// IA
	limited := func(h fiber.Handler) []fiber.Handler {
		chain := []fiber.Handler{readers, business}
		if deps.AIRateLimiter != nil {
			chain = append(chain, deps.AIRateLimiter.Middleware())
		}
		return append(chain, h)
	}
	insightHandler := NewInsightHandler(deps.Insights)
	ai := api.Group("/ai")
	ai.Post("/analise", limited(insightHandler.Generate)...)
	ai.Get("/analise-completa", limited(insightHandler.GenerateAll)...)
	ai.Get("/analise-cache", readers, business, insightHandler.Cached)
	ai.Delete("/analise-cache", readers, business, insightHandler.Clear)
}
