package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/faturas-analytics/internal/application/dto"
)

// LocalBusinessNIF guarda el NIF verificado por RequireBusinessAccess.
const LocalBusinessNIF = "business_nif"

// accessChecker es el contrato mínimo que necesita el middleware para verificar el acceso a un NIF.
// Lo implementa *usecase.AccessService; el uso de interfaz evita el import circular.
type accessChecker interface {
	HasAccess(ctx context.Context, userID, role, nif string) (bool, error)
}

// RequireBusinessAccess verifica que el usuario del token pueda consultar el NIF
// de la petición. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 400 VALIDATION  → la petición no trae NIF, o la query y el cuerpo traen NIF distintos.
//   - 403 FORBIDDEN   → NIF no asignado al usuario.
//   - 503 ACCESS_CHECK_FAILED → fallo de infraestructura al consultar la DB.
func RequireBusinessAccess(checker accessChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "user_id no encontrado en el token",
			})
		}
		nif, conflict := businessNIF(c)
		if conflict {
			return nifConflict(c)
		}
		if nif == "" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code:    "VALIDATION",
				Message: "NIF obligatorio",
			})
		}

		ok, err := checker.HasAccess(c.UserContext(), userID, GetRole(c), nif)
		if err != nil {
			zerolog.Ctx(c.UserContext()).Error().Err(err).Str("nif", nif).Msg("verificación de acceso fallida")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "ACCESS_CHECK_FAILED",
				Message: "no se pudo verificar el acceso, intente más tarde",
			})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "sin acceso al negocio " + nif,
			})
		}
		c.Locals(LocalBusinessNIF, nif)
		return c.Next()
	}
}

// GetBusinessNIF devuelve el NIF verificado o "" si la ruta no pasó por RequireBusinessAccess.
func GetBusinessNIF(c *fiber.Ctx) string {
	nif, _ := c.Locals(LocalBusinessNIF).(string)
	return nif
}

// businessNIF toma el NIF de la query y, en peticiones con cuerpo JSON, del
// campo "nif". conflict es true cuando ambos vienen y no coinciden.
func businessNIF(c *fiber.Ctx) (nif string, conflict bool) {
	fromQuery := strings.TrimSpace(c.Query("nif"))
	fromBody := bodyNIF(c)
	if fromQuery != "" && fromBody != "" && fromQuery != fromBody {
		return "", true
	}
	if fromQuery != "" {
		return fromQuery, false
	}
	return fromBody, false
}

func bodyNIF(c *fiber.Ctx) string {
	if len(c.Body()) == 0 {
		return ""
	}
	var body struct {
		NIF string `json:"nif"`
	}
	if err := c.BodyParser(&body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.NIF)
}

func nifConflict(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code:    "VALIDATION",
		Message: "el NIF de la query y el del cuerpo no coinciden",
	})
}
