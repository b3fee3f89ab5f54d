package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/faturas-analytics/internal/application/analytics"
	"github.com/jhoicas/faturas-analytics/internal/application/dto"
	"github.com/jhoicas/faturas-analytics/internal/domain/period"
)

// InsightService (implementado por *usecase.InsightUseCase).
type InsightService interface {
	Generate(ctx context.Context, q analytics.Query, kind string) (*dto.InsightDTO, error)
	GenerateAll(ctx context.Context, q analytics.Query) (*dto.InsightBatchDTO, error)
	Cached(ctx context.Context, q analytics.Query, kind string) (*dto.InsightDTO, error)
	Clear(ctx context.Context, nif, branch string) (*dto.InsightCacheClearDTO, error)
}

// InsightHandler expone los análisis narrativos generados por IA.
type InsightHandler struct {
	uc InsightService
}

func NewInsightHandler(uc InsightService) *InsightHandler {
	return &InsightHandler{uc: uc}
}

// Generate godoc
// @Summary      Genera (o devuelve cacheado) un análisis por tipo
// @Tags         ai
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InsightRequest  true  "nif, filial, periodo, tipo"
// @Success      200  {object}  dto.InsightDTO
// @Failure      408  {object}  dto.ErrorResponse
// @Failure      429  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/ai/analise [post]
func (h *InsightHandler) Generate(c *fiber.Ctx) error {
	var req dto.InsightRequest
	if err := c.BodyParser(&req); err != nil {
		return validationError(c, "cuerpo JSON inválido")
	}
	q, err := analytics.NewQuery(req.NIF, req.Branch, period.Code(req.Period))
	if err != nil {
		return respondError(c, err)
	}
	if checked := GetBusinessNIF(c); checked != "" && checked != q.NIF {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:    "FORBIDDEN",
			Message: "sin acceso al negocio " + q.NIF,
		})
	}
	out, err := h.uc.Generate(c.UserContext(), q, strings.TrimSpace(req.Kind))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GenerateAll godoc
// @Summary      Genera todos los análisis y el resumen ejecutivo
// @Tags         ai
// @Security     Bearer
// @Produce      json
// @Param        nif      query  string  true   "NIF del negocio"
// @Param        filial   query  string  false  "Filial"
// @Param        periodo  query  int     false  "Código de período"
// @Success      200  {object}  dto.InsightBatchDTO
// @Router       /api/ai/analise-completa [get]
func (h *InsightHandler) GenerateAll(c *fiber.Ctx) error {
	q, err := queryFrom(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.GenerateAll(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Cached godoc
// @Summary      Devuelve un análisis cacheado sin llamar a la IA
// @Tags         ai
// @Security     Bearer
// @Produce      json
// @Param        nif      query  string  true   "NIF del negocio"
// @Param        filial   query  string  false  "Filial"
// @Param        periodo  query  int     false  "Código de período"
// @Param        tipo     query  string  true   "Tipo de análisis"
// @Success      200  {object}  dto.InsightDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ai/analise-cache [get]
func (h *InsightHandler) Cached(c *fiber.Ctx) error {
	q, err := queryFrom(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Cached(c.UserContext(), q, strings.TrimSpace(c.Query("tipo")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Clear godoc
// @Summary      Borra los análisis cacheados del negocio
// @Tags         ai
// @Security     Bearer
// @Produce      json
// @Param        nif     query  string  true   "NIF del negocio"
// @Param        filial  query  string  false  "Filial"
// @Success      200  {object}  dto.InsightCacheClearDTO
// @Router       /api/ai/analise-cache [delete]
func (h *InsightHandler) Clear(c *fiber.Ctx) error {
	out, err := h.uc.Clear(c.UserContext(), c.Query("nif"), c.Query("filial"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
