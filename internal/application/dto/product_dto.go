package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto de seguro.
type CreateProductRequest struct {
	Name           string          `json:"name" validate:"required,min=1,max=200"`
	Insurer        string          `json:"insurer" validate:"required,max=200"`
	Category       string          `json:"category" validate:"required,oneof=life health auto home travel business other"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	CommissionRate decimal.Decimal `json:"commission_rate"` // porcentaje 0–100
	Coverages      []string        `json:"coverages"`
	Active         *bool           `json:"active"`
}

// UpdateProductRequest entrada para actualizar un producto.
type UpdateProductRequest struct {
	Name           *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Insurer        *string          `json:"insurer" validate:"omitempty,max=200"`
	Category       *string          `json:"category" validate:"omitempty,oneof=life health auto home travel business other"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
	Coverages      []string         `json:"coverages"`
	Active         *bool            `json:"active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Insurer        string          `json:"insurer"`
	Category       string          `json:"category"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	Coverages      []string        `json:"coverages"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProductListResponse lista de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
