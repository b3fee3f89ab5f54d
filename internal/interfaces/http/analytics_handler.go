package http

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/faturas-analytics/internal/application/analytics"
	"github.com/jhoicas/faturas-analytics/internal/application/dto"
	"github.com/jhoicas/faturas-analytics/internal/domain/period"
)

// AnalyticsReader vistas comparativas que expone el handler (implementado por *analytics.Service).
type AnalyticsReader interface {
	Summary(ctx context.Context, q analytics.Query) (*dto.SummaryReportDTO, error)
	Products(ctx context.Context, q analytics.Query, limit int) (*dto.ProductsReportDTO, error)
	Heatmap(ctx context.Context, q analytics.Query) (*dto.HeatmapReportDTO, error)
	FullAnalysis(ctx context.Context, q analytics.Query) (*dto.FullAnalysisDTO, error)
}

// CacheManager operaciones de caché (implementado por *analytics.CacheUseCase).
type CacheManager interface {
	Clear(ctx context.Context, nif, branch string) (*dto.CacheClearDTO, error)
	ClearFullAnalysis(ctx context.Context, nif, branch string, code *period.Code) (*dto.AnalysisCacheClearDTO, error)
	LastUpdated(ctx context.Context, nif, branch string) (*dto.LastUpdatedDTO, error)
}

// AnalyticsHandler maneja los endpoints de analítica comparativa.
type AnalyticsHandler struct {
	reader AnalyticsReader
	cache  CacheManager
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(reader AnalyticsReader, cache CacheManager) *AnalyticsHandler {
	return &AnalyticsHandler{reader: reader, cache: cache}
}

// queryFrom lee nif, filial y periodo de la query string.
func queryFrom(c *fiber.Ctx) (analytics.Query, error) {
	return analytics.ParseQuery(c.Query("nif"), c.Query("filial"), c.Query("periodo"))
}

// Summary godoc
// @Summary      Resumen comparativo del período
// @Description  Ventas, facturas, artículos y ticket medio del período actual frente al anterior, con tabla horaria.
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        nif      query  string  true   "NIF del negocio"
// @Param        filial   query  string  false  "Filial (vacío = todas)"
// @Param        periodo  query  int     false  "0=hoy 1=ayer 2=semana 3=mes 4=trimestre 5=año"
// @Success      200  {object}  dto.SummaryReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/stats/resumo [get]
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	q, err := queryFrom(c)
	if err != nil {
		return respondError(c, err)
	}
	report, err := h.reader.Summary(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// Products godoc
// @Summary      Ranking de productos del período
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        nif      query  string  true   "NIF del negocio"
// @Param        filial   query  string  false  "Filial"
// @Param        periodo  query  int     false  "Código de período"
// @Param        limite   query  int     false  "Máx. productos (vacío = todos)"
// @Success      200  {object}  dto.ProductsReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/products [get]
func (h *AnalyticsHandler) Products(c *fiber.Ctx) error {
	q, err := queryFrom(c)
	if err != nil {
		return respondError(c, err)
	}
	limit := 0
	if raw := strings.TrimSpace(c.Query("limite")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return validationError(c, "limite debe ser un entero no negativo")
		}
	}
	report, err := h.reader.Products(c.UserContext(), q, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// Heatmap godoc
// @Summary      Mapa de calor hora × día de la semana
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        nif      query  string  true   "NIF del negocio"
// @Param        filial   query  string  false  "Filial"
// @Param        periodo  query  int     false  "Código de período"
// @Success      200  {object}  dto.HeatmapReportDTO
// @Router       /api/heatmap [get]
func (h *AnalyticsHandler) Heatmap(c *fiber.Ctx) error {
	q, err := queryFrom(c)
	if err != nil {
		return respondError(c, err)
	}
	report, err := h.reader.Heatmap(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// FullAnalysis godoc
// @Summary      Análisis completo con enriquecimiento narrativo
// @Description  Si la IA falla, el campo analysis trae un placeholder y la respuesta sigue siendo 200.
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        nif      query  string  true   "NIF del negocio"
// @Param        filial   query  string  false  "Filial"
// @Param        periodo  query  int     false  "Código de período"
// @Success      200  {object}  dto.FullAnalysisDTO
// @Router       /api/analise-completa [get]
func (h *AnalyticsHandler) FullAnalysis(c *fiber.Ctx) error {
	q, err := queryFrom(c)
	if err != nil {
		return respondError(c, err)
	}
	report, err := h.reader.FullAnalysis(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// LastUpdated godoc
// @Summary      Marca de última actualización del caché
// @Tags         cache
// @Security     Bearer
// @Produce      json
// @Param        nif     query  string  true   "NIF del negocio"
// @Param        filial  query  string  false  "Filial"
// @Success      200  {object}  dto.LastUpdatedDTO
// @Router       /api/ultima-atualizacao [get]
func (h *AnalyticsHandler) LastUpdated(c *fiber.Ctx) error {
	out, err := h.cache.LastUpdated(c.UserContext(), c.Query("nif"), c.Query("filial"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ClearCache godoc
// @Summary      Invalida el caché del negocio y encola el recálculo
// @Tags         cache
// @Security     Bearer
// @Produce      json
// @Param        nif     query  string  true   "NIF del negocio"
// @Param        filial  query  string  false  "Filial"
// @Success      202  {object}  dto.CacheClearDTO
// @Router       /api/limparcache [delete]
func (h *AnalyticsHandler) ClearCache(c *fiber.Ctx) error {
	out, err := h.cache.Clear(c.UserContext(), c.Query("nif"), c.Query("filial"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(out)
}

// ClearFullAnalysis godoc
// @Summary      Borra el análisis completo cacheado
// @Tags         cache
// @Security     Bearer
// @Produce      json
// @Param        nif      query  string  true   "NIF del negocio"
// @Param        filial   query  string  false  "Filial"
// @Param        periodo  query  int     false  "Código de período (vacío = todos)"
// @Success      200  {object}  dto.AnalysisCacheClearDTO
// @Router       /api/limparcache-analise-completa [delete]
func (h *AnalyticsHandler) ClearFullAnalysis(c *fiber.Ctx) error {
	var code *period.Code
	if raw := strings.TrimSpace(c.Query("periodo")); raw != "" {
		parsed, err := period.ParseCode(raw)
		if err != nil {
			return respondError(c, err)
		}
		code = &parsed
	}
	out, err := h.cache.ClearFullAnalysis(c.UserContext(), c.Query("nif"), c.Query("filial"), code)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
