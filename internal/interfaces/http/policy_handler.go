package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/seguros-api/internal/application/usecase"
)

// PolicyHandler consulta pólizas emitidas. La emisión la hace la automatización.
type PolicyHandler struct {
	uc *usecase.PolicyUseCase
}

func NewPolicyHandler(uc *usecase.PolicyUseCase) *PolicyHandler {
	return &PolicyHandler{uc: uc}
}

// List godoc
// @Summary      Listar pólizas
// @Tags         policies
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Estado"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.PolicyListResponse
// @Router       /api/policies [get]
func (h *PolicyHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context(), c.Query("status"), pageFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener póliza
// @Tags         policies
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la póliza"
// @Success      200  {object}  dto.PolicyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/policies/{id} [get]
func (h *PolicyHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return notFound(c, "póliza")
	}
	return c.JSON(out)
}

// WelcomeKit godoc
// @Summary      URL de descarga del kit de bienvenida
// @Tags         policies
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la póliza"
// @Success      200  {object}  dto.WelcomeKitURLResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/policies/{id}/welcome-kit [get]
func (h *PolicyHandler) WelcomeKit(c *fiber.Ctx) error {
	out, err := h.uc.WelcomeKitURL(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
