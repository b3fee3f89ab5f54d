package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/faturas-analytics/internal/application/dto"
)

// EstablishmentLister (implementado por *usecase.AccessService).
type EstablishmentLister interface {
	Establishments(ctx context.Context, userID string) ([]dto.EstablishmentDTO, error)
}

// EstablishmentHandler lista los negocios asignados al usuario del token.
type EstablishmentHandler struct {
	uc EstablishmentLister
}

func NewEstablishmentHandler(uc EstablishmentLister) *EstablishmentHandler {
	return &EstablishmentHandler{uc: uc}
}

// List godoc
// @Summary      Negocios y filiales del usuario
// @Tags         establishments
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.EstablishmentDTO
// @Router       /api/estabelecimentos [get]
func (h *EstablishmentHandler) List(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Code: "UNAUTHORIZED", Message: "user_id no encontrado en el token",
		})
	}
	out, err := h.uc.Establishments(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
