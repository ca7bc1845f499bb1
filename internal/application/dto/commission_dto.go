package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/seguros-api/internal/domain/display"
)

// CommissionListQuery filtros del listado de comisiones.
type CommissionListQuery struct {
	Search   string `query:"search"`
	Status   string `query:"status"`
	SellerID string `query:"seller_id"`
	PageRequest
}

// CommissionResponse salida de una comisión.
type CommissionResponse struct {
	ID          string          `json:"id"`
	SaleID      string          `json:"sale_id"`
	SellerID    string          `json:"seller_id"`
	SellerName  string          `json:"seller_name,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Rate        decimal.Decimal `json:"rate"`
	Status      string          `json:"status"`
	StatusBadge display.Badge   `json:"status_badge"`
	ApprovedBy  string          `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time      `json:"approved_at,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CommissionListResponse lista paginada de comisiones.
type CommissionListResponse struct {
	Items []CommissionResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
