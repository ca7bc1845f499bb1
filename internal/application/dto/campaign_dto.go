package dto

import (
	"time"

	"github.com/jhoicas/seguros-api/internal/domain/display"
	"github.com/jhoicas/seguros-api/internal/domain/metrics"
)

// CreateCampaignRequest entrada para crear una campaña de recuperación.
type CreateCampaignRequest struct {
	Name            string   `json:"name" validate:"required,min=2,max=200"`
	Channel         string   `json:"channel" validate:"required,oneof=whatsapp email sms"`
	TargetStatuses  []string `json:"target_statuses" validate:"required,min=1,dive,oneof=new contacted qualified proposal negotiation awaiting_payment lost"`
	MessageTemplate string   `json:"message_template" validate:"required,min=5,max=1000"`
}

// CampaignResponse salida de una campaña con sus tasas.
type CampaignResponse struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Channel         string           `json:"channel"`
	TargetStatuses  []string         `json:"target_statuses"`
	MessageTemplate string           `json:"message_template"`
	Status          string           `json:"status"`
	StatusBadge     display.Badge    `json:"status_badge"`
	Metrics         metrics.Campaign `json:"metrics"`
	CreatedBy       string           `json:"created_by"`
	StartedAt       *time.Time       `json:"started_at,omitempty"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// CampaignListResponse lista de campañas.
type CampaignListResponse struct {
	Items []CampaignResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
