package http

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/seguros-api/internal/application/aiprocessor"
	"github.com/jhoicas/seguros-api/internal/application/dto"
)

// functionInvoker lo implementa *functions.Gateway.
type functionInvoker interface {
	Invoke(ctx context.Context, name string, payload json.RawMessage, idempotencyKey string) (json.RawMessage, error)
}

// FunctionHandler invoca funciones de negocio nombradas (emit-policy,
// send-whatsapp-message, ...). El cuerpo se reenvía tal cual.
type FunctionHandler struct {
	gw functionInvoker
}

// NewFunctionHandler construye el handler.
func NewFunctionHandler(gw functionInvoker) *FunctionHandler {
	return &FunctionHandler{gw: gw}
}

// Invoke godoc
// @Summary      Invocar función
// @Description  La misma Idempotency-Key devuelve la respuesta guardada durante 24h.
// @Tags         functions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        name             path    string  true   "Nombre de la función"
// @Param        Idempotency-Key  header  string  false  "Clave de idempotencia"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/functions/{name} [post]
func (h *FunctionHandler) Invoke(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) > 0 && !json.Valid(body) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "el cuerpo debe ser JSON"})
	}
	// El buffer de fasthttp se reutiliza entre requests.
	payload := append(json.RawMessage(nil), body...)
	out, err := h.gw.Invoke(c.Context(), c.Params("name"), payload, c.Get("Idempotency-Key"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(out)
}

// AIHandler puntuación de leads con IA.
type AIHandler struct {
	uc *aiprocessor.UseCase
}

func NewAIHandler(uc *aiprocessor.UseCase) *AIHandler {
	return &AIHandler{uc: uc}
}

// ScoreLead godoc
// @Summary      Puntuar lead con IA
// @Tags         ai
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LeadScoringRequest  true  "Lead (lead_id o datos)"
// @Success      200   {object}  dto.LeadScoreDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/ai/score-lead [post]
func (h *AIHandler) ScoreLead(c *fiber.Ctx) error {
	var in dto.LeadScoringRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.ScoreLead(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
