package entity

import (
	"encoding/json"
	"time"
)

// Acciones de auditoría usadas por la automatización.
const (
	AuditLeadClosureTriggered = "automation.lead_closure.triggered"
	AuditWelcomeKitGenerated  = "automation.welcome_kit.generated"
	AuditAutomationFailed     = "automation.failed"
)

// AuditLog registro inmutable de una acción relevante para compliance.
type AuditLog struct {
	ID         string
	UserID     string // vacío cuando la acción la ejecuta el sistema
	Action     string
	EntityType string
	EntityID   string
	Details    json.RawMessage
	IPAddress  string
	CreatedAt  time.Time
}
