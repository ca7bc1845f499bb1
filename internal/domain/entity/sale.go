package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus estado comercial de una venta.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusPaid      SaleStatus = "paid"
	SaleStatusCancelled SaleStatus = "cancelled"
	SaleStatusRefunded  SaleStatus = "refunded"
)

// SaleStatuses devuelve todos los estados declarados.
func SaleStatuses() []SaleStatus {
	return []SaleStatus{SaleStatusPending, SaleStatusPaid, SaleStatusCancelled, SaleStatusRefunded}
}

// Sale transacción comercial ligada a un cliente y a un producto.
type Sale struct {
	ID            string
	LeadID        string
	ClientID      string
	ProductID     string
	SellerID      string
	Amount        decimal.Decimal
	Status        SaleStatus
	PaymentMethod string // transfer, card, cash
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
