package dto

import (
	"encoding/json"
	"time"
)

// UpsertConfigRequest crea o reemplaza una clave de configuración.
type UpsertConfigRequest struct {
	Value       json.RawMessage `json:"value" validate:"required"`
	Description string          `json:"description" validate:"omitempty,max=500"`
}

// SystemConfigResponse salida de una clave de configuración.
type SystemConfigResponse struct {
	Key         string          `json:"key"`
	Value       json.RawMessage `json:"value"`
	Description string          `json:"description"`
	UpdatedBy   string          `json:"updated_by,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
