package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/seguros-api/internal/application/analytics"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve pipeline, ventas y comisiones, más las ventas del mes.
// GET /api/dashboard/summary
//
// Un seller ve solo sus números; el resto de roles ve toda la operación o
// filtra con ?seller_id=.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	sellerID := c.Query("seller_id")
	if GetRole(c) == entity.RoleSeller {
		sellerID = GetUserID(c)
	}

	summary, err := h.uc.GetSummary(c.Context(), sellerID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(summary)
}
