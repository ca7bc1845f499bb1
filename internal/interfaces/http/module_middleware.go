package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/functions"
)

// moduleChecker es el contrato mínimo que necesita el middleware para verificar módulos.
// Lo implementa *usecase.ModuleService.
type moduleChecker interface {
	IsEnabled(ctx context.Context, moduleName string) (bool, error)
}

// RequireModule devuelve un middleware Fiber que corta la ruta si el módulo
// está desactivado en system_config ("module.<nombre>" = false).
//
// Comportamiento:
//   - 403 Forbidden → módulo desactivado.
//   - 503 Service Unavailable → fallo de infraestructura al consultar la DB.
func RequireModule(moduleName string, checker moduleChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		enabled, err := checker.IsEnabled(c.Context(), moduleName)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "MODULE_CHECK_FAILED",
				Message: "no se pudo verificar el módulo, intente más tarde",
			})
		}
		if !enabled {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "MODULE_DISABLED",
				Message: "el módulo '" + moduleName + "' está desactivado",
			})
		}
		return c.Next()
	}
}

// functionModules módulo del que depende cada función invocable por HTTP.
var functionModules = map[string]string{
	functions.AIProcessor:         ModuleAI,
	functions.SendRecoveryMessage: ModuleCampaigns,
}

// RequireFunctionModule aplica RequireModule según el :name de la ruta de
// funciones. Las funciones sin módulo pasan directo.
func RequireFunctionModule(checker moduleChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		module, ok := functionModules[c.Params("name")]
		if !ok {
			return c.Next()
		}
		return RequireModule(module, checker)(c)
	}
}
