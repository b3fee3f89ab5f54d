package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/faturas-analytics/internal/application/dto"
	"github.com/jhoicas/faturas-analytics/internal/domain"
)

// respondError traduce los errores de dominio a status HTTP + dto.ErrorResponse.
func respondError(c *fiber.Ctx, err error) error {
	status, code, msg := fiber.StatusInternalServerError, "INTERNAL", "error interno"
	switch {
	case domain.IsValidation(err):
		status, code, msg = fiber.StatusBadRequest, "VALIDATION", err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, code, msg = fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"
	case errors.Is(err, domain.ErrForbidden):
		status, code, msg = fiber.StatusForbidden, "FORBIDDEN", "acceso denegado"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code, msg = fiber.StatusUnauthorized, "UNAUTHORIZED", "no autorizado"
	case errors.Is(err, domain.ErrDuplicate):
		status, code, msg = fiber.StatusConflict, "DUPLICATE", err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		status, code, msg = fiber.StatusRequestTimeout, "TIMEOUT", "la operación excedió el tiempo límite"
	case errors.Is(err, domain.ErrAIUnavailable):
		status, code, msg = fiber.StatusServiceUnavailable, "AI_UNAVAILABLE", err.Error()
	case errors.Is(err, domain.ErrDataFetch):
		status, code, msg = fiber.StatusBadGateway, "DATA_FETCH", "error al obtener datos"
	}

	log := zerolog.Ctx(c.UserContext())
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("petición fallida")
	} else {
		log.Debug().Err(err).Str("path", c.Path()).Msg("petición rechazada")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func validationError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
}
