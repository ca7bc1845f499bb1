package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/seguros-api/internal/domain/display"
)

// CreateSaleRequest entrada para registrar una venta a partir de un lead.
type CreateSaleRequest struct {
	LeadID        string          `json:"lead_id" validate:"required,uuid"`
	ClientID      string          `json:"client_id" validate:"required,uuid"`
	ProductID     string          `json:"product_id" validate:"required,uuid"`
	SellerID      string          `json:"seller_id" validate:"omitempty,uuid"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" validate:"omitempty,oneof=card transfer cash debit other"`
}

// MarkSalePaidRequest confirma el pago de una venta.
type MarkSalePaidRequest struct {
	Method      string `json:"method" validate:"omitempty,oneof=card transfer cash debit other"`
	ExternalRef string `json:"external_ref" validate:"omitempty,max=200"`
}

// RecordPaymentRequest registra un pago manual (parcial o fallido) de una venta.
type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method" validate:"required,oneof=card transfer cash debit other"`
	Status      string          `json:"status" validate:"required,oneof=pending paid failed refunded"`
	ExternalRef string          `json:"external_ref" validate:"omitempty,max=200"`
}

// SaleListQuery filtros del listado de ventas.
type SaleListQuery struct {
	Search   string `query:"search"`
	Status   string `query:"status"`
	SellerID string `query:"seller_id"`
	PageRequest
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID            string          `json:"id"`
	LeadID        string          `json:"lead_id"`
	ClientID      string          `json:"client_id"`
	ClientName    string          `json:"client_name,omitempty"`
	ProductID     string          `json:"product_id"`
	SellerID      string          `json:"seller_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	StatusBadge   display.Badge   `json:"status_badge"`
	PaymentMethod string          `json:"payment_method"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// PaymentResponse salida de un pago.
type PaymentResponse struct {
	ID          string          `json:"id"`
	SaleID      string          `json:"sale_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	Status      string          `json:"status"`
	StatusBadge display.Badge   `json:"status_badge"`
	ExternalRef string          `json:"external_ref,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// MarkSalePaidResponse resultado de confirmar el pago: venta, pago y comisión generada.
type MarkSalePaidResponse struct {
	Sale       SaleResponse        `json:"sale"`
	Payment    PaymentResponse     `json:"payment"`
	Commission *CommissionResponse `json:"commission,omitempty"`
}
