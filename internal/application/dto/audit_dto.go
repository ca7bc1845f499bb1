package dto

import (
	"encoding/json"
	"time"
)

// AuditLogListQuery filtros del registro de auditoría.
type AuditLogListQuery struct {
	Search     string    `query:"search"`
	Action     string    `query:"action"`
	EntityType string    `query:"entity_type"`
	UserID     string    `query:"user_id"`
	From       time.Time `query:"from"`
	To         time.Time `query:"to"`
	PageRequest
}

// AuditLogResponse salida de un registro de auditoría.
type AuditLogResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id,omitempty"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Details    json.RawMessage `json:"details,omitempty"`
	IPAddress  string          `json:"ip_address,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AuditLogListResponse lista paginada de auditoría.
type AuditLogListResponse struct {
	Items []AuditLogResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ComplianceReportDTO resumen de auditoría de un período.
type ComplianceReportDTO struct {
	From               time.Time      `json:"from"`
	To                 time.Time      `json:"to"`
	Total              int            `json:"total"`
	ByAction           map[string]int `json:"by_action"`
	ByEntityType       map[string]int `json:"by_entity_type"`
	ByUser             map[string]int `json:"by_user"`
	AutomationFailures int            `json:"automation_failures"`
}
