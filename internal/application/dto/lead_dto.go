package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/seguros-api/internal/domain/display"
)

// CreateLeadRequest entrada para crear un lead.
type CreateLeadRequest struct {
	Name           string          `json:"name" validate:"required,min=2,max=200"`
	Email          string          `json:"email" validate:"omitempty,email"`
	Phone          string          `json:"phone" validate:"omitempty,max=30"`
	Document       string          `json:"document" validate:"omitempty,max=30"`
	Source         string          `json:"source" validate:"omitempty,max=50"`
	ProductID      string          `json:"product_id" validate:"omitempty,uuid"`
	SellerID       string          `json:"seller_id" validate:"omitempty,uuid"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	Notes          string          `json:"notes"`
}

// UpdateLeadRequest entrada para actualizar datos del lead (el estado va por UpdateLeadStatusRequest).
type UpdateLeadRequest struct {
	Name           *string          `json:"name" validate:"omitempty,min=2,max=200"`
	Email          *string          `json:"email" validate:"omitempty,email"`
	Phone          *string          `json:"phone" validate:"omitempty,max=30"`
	Document       *string          `json:"document" validate:"omitempty,max=30"`
	Source         *string          `json:"source" validate:"omitempty,max=50"`
	ProductID      *string          `json:"product_id" validate:"omitempty,uuid"`
	EstimatedValue *decimal.Decimal `json:"estimated_value"`
	Notes          *string          `json:"notes"`
}

// UpdateLeadStatusRequest cambio de etapa del funil.
type UpdateLeadStatusRequest struct {
	Status     string `json:"status" validate:"required,oneof=new contacted qualified proposal negotiation awaiting_payment paid lost"`
	LostReason string `json:"lost_reason" validate:"omitempty,max=500"`
}

// AssignLeadRequest asigna el lead a un vendedor.
type AssignLeadRequest struct {
	SellerID string `json:"seller_id" validate:"required,uuid"`
}

// LeadListQuery filtros del listado de leads.
type LeadListQuery struct {
	Search   string `query:"search"`
	Status   string `query:"status"`
	SellerID string `query:"seller_id"`
	Source   string `query:"source"`
	PageRequest
}

// LeadResponse salida de un lead.
type LeadResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Document       string          `json:"document"`
	Source         string          `json:"source"`
	Status         string          `json:"status"`
	StatusBadge    display.Badge   `json:"status_badge"`
	ProductID      string          `json:"product_id,omitempty"`
	SellerID       string          `json:"seller_id,omitempty"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	Notes          string          `json:"notes"`
	LostReason     string          `json:"lost_reason,omitempty"`
	ClosedAt       *time.Time      `json:"closed_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// LeadListResponse lista paginada de leads.
type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
