package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/seguros-api/internal/domain/display"
)

// PolicyResponse salida de una póliza.
type PolicyResponse struct {
	ID             string          `json:"id"`
	Number         string          `json:"number"`
	SaleID         string          `json:"sale_id"`
	ClientID       string          `json:"client_id"`
	ProductID      string          `json:"product_id"`
	Status         string          `json:"status"`
	StatusBadge    display.Badge   `json:"status_badge"`
	Premium        decimal.Decimal `json:"premium"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	HasWelcomeKit  bool            `json:"has_welcome_kit"`
	WelcomeKitSent *time.Time      `json:"welcome_kit_sent_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// PolicyListResponse lista de pólizas.
type PolicyListResponse struct {
	Items []PolicyResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// WelcomeKitURLResponse URL temporal de descarga del kit de bienvenida.
type WelcomeKitURLResponse struct {
	PolicyID string `json:"policy_id"`
	URL      string `json:"url"`
}
