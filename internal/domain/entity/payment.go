package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus estado de un cobro.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentStatuses devuelve todos los estados declarados.
func PaymentStatuses() []PaymentStatus {
	return []PaymentStatus{PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded}
}

// Payment cobro registrado contra una venta.
type Payment struct {
	ID          string
	SaleID      string
	Amount      decimal.Decimal
	Method      string
	Status      PaymentStatus
	ExternalRef string // referencia del proveedor de pago
	PaidAt      *time.Time
	CreatedAt   time.Time
}
