package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/usecase"
)

// CommissionHandler maneja las comisiones de vendedores.
type CommissionHandler struct {
	uc *usecase.CommissionUseCase
}

// NewCommissionHandler construye el handler.
func NewCommissionHandler(uc *usecase.CommissionUseCase) *CommissionHandler {
	return &CommissionHandler{uc: uc}
}

// List godoc
// @Summary      Listar comisiones
// @Tags         commissions
// @Security     Bearer
// @Produce      json
// @Param        search     query  string  false  "Vendedor"
// @Param        status     query  string  false  "Estado (all = todos)"
// @Param        seller_id  query  string  false  "Vendedor"
// @Param        limit      query  int     false  "Límite"  default(20)
// @Param        offset     query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.CommissionListResponse
// @Router       /api/commissions [get]
func (h *CommissionHandler) List(c *fiber.Ctx) error {
	q := dto.CommissionListQuery{
		Search:      c.Query("search"),
		Status:      c.Query("status"),
		SellerID:    c.Query("seller_id"),
		PageRequest: pageFromQuery(c),
	}
	out, err := h.uc.List(c.Context(), actor(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar comisión
// @Tags         commissions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la comisión"
// @Success      200  {object}  dto.CommissionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/commissions/{id}/approve [post]
func (h *CommissionHandler) Approve(c *fiber.Ctx) error {
	out, err := h.uc.Approve(c.Context(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Pay godoc
// @Summary      Marcar comisión como pagada
// @Tags         commissions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la comisión"
// @Success      200  {object}  dto.CommissionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/commissions/{id}/pay [post]
func (h *CommissionHandler) Pay(c *fiber.Ctx) error {
	out, err := h.uc.Pay(c.Context(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar comisión
// @Tags         commissions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la comisión"
// @Success      200  {object}  dto.CommissionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/commissions/{id}/cancel [post]
func (h *CommissionHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.Context(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
