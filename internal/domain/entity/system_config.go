package entity

import (
	"encoding/json"
	"time"
)

// SystemConfig par clave/valor de configuración editable por administradores.
type SystemConfig struct {
	Key         string
	Value       json.RawMessage
	Description string
	UpdatedBy   string
	UpdatedAt   time.Time
}
