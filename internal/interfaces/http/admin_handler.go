package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/usecase"
)

// ConfigHandler configuración del sistema (clave → JSON).
type ConfigHandler struct {
	uc *usecase.ConfigUseCase
}

func NewConfigHandler(uc *usecase.ConfigUseCase) *ConfigHandler {
	return &ConfigHandler{uc: uc}
}

// List godoc
// @Summary      Listar configuración
// @Tags         config
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.SystemConfigResponse
// @Router       /api/config [get]
func (h *ConfigHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener clave de configuración
// @Tags         config
// @Security     Bearer
// @Produce      json
// @Param        key  path  string  true  "Clave"
// @Success      200  {object}  dto.SystemConfigResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/config/{key} [get]
func (h *ConfigHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), c.Params("key"))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return notFound(c, "configuración")
	}
	return c.JSON(out)
}

// Upsert godoc
// @Summary      Crear o reemplazar clave de configuración
// @Tags         config
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        key   path  string  true  "Clave (ej: module.campaigns)"
// @Param        body  body  dto.UpsertConfigRequest  true  "Valor JSON"
// @Success      200   {object}  dto.SystemConfigResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/config/{key} [put]
func (h *ConfigHandler) Upsert(c *fiber.Ctx) error {
	var in dto.UpsertConfigRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Upsert(c.Context(), actor(c), c.Params("key"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AuditHandler registro de auditoría y reporte de cumplimiento.
type AuditHandler struct {
	uc *usecase.AuditUseCase
}

func NewAuditHandler(uc *usecase.AuditUseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// List godoc
// @Summary      Registro de auditoría
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        search       query  string  false  "Texto libre"
// @Param        action       query  string  false  "Acción"
// @Param        entity_type  query  string  false  "Tipo de entidad"
// @Param        user_id      query  string  false  "Usuario"
// @Param        from         query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to           query  string  false  "Hasta (RFC3339 o YYYY-MM-DD)"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.AuditLogListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/audit-logs [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	from, to, ok := dateRange(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from/to deben ser RFC3339 o YYYY-MM-DD"})
	}
	q := dto.AuditLogListQuery{
		Search:      c.Query("search"),
		Action:      c.Query("action"),
		EntityType:  c.Query("entity_type"),
		UserID:      c.Query("user_id"),
		From:        from,
		To:          to,
		PageRequest: pageFromQuery(c),
	}
	out, err := h.uc.List(c.Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Compliance godoc
// @Summary      Reporte de cumplimiento
// @Description  Sin fechas cubre los últimos 30 días.
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Desde"
// @Param        to    query  string  false  "Hasta"
// @Success      200  {object}  dto.ComplianceReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/compliance/report [get]
func (h *AuditHandler) Compliance(c *fiber.Ctx) error {
	from, to, ok := dateRange(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from/to deben ser RFC3339 o YYYY-MM-DD"})
	}
	out, err := h.uc.ComplianceReport(c.Context(), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// dateRange lee from/to. Una fecha sin hora en "to" cubre el día completo.
func dateRange(c *fiber.Ctx) (from, to time.Time, ok bool) {
	from, ok = parseQueryTime(c.Query("from"), false)
	if !ok {
		return
	}
	to, ok = parseQueryTime(c.Query("to"), true)
	return
}

func parseQueryTime(s string, endOfDay bool) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, true
}

// JobHandler vista operativa de la cola de automatización.
type JobHandler struct {
	uc *usecase.JobUseCase
}

func NewJobHandler(uc *usecase.JobUseCase) *JobHandler {
	return &JobHandler{uc: uc}
}

// List godoc
// @Summary      Jobs de automatización
// @Tags         jobs
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "queued | running | succeeded | failed"
// @Param        limit   query  int     false  "Límite"  default(100)
// @Success      200  {array}  dto.AutomationJobResponse
// @Router       /api/jobs [get]
func (h *JobHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context(), c.Query("status"), c.QueryInt("limit", 100))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
