package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionStatus estado de aprobación/pago de una comisión.
type CommissionStatus string

const (
	CommissionStatusPending   CommissionStatus = "pending"
	CommissionStatusApproved  CommissionStatus = "approved"
	CommissionStatusPaid      CommissionStatus = "paid"
	CommissionStatusCancelled CommissionStatus = "cancelled"
)

// CommissionStatuses devuelve todos los estados declarados.
func CommissionStatuses() []CommissionStatus {
	return []CommissionStatus{CommissionStatusPending, CommissionStatusApproved, CommissionStatusPaid, CommissionStatusCancelled}
}

// CanTransitionTo pending → approved → paid; cancelled desde pending o approved.
func (s CommissionStatus) CanTransitionTo(to CommissionStatus) bool {
	switch s {
	case CommissionStatusPending:
		return to == CommissionStatusApproved || to == CommissionStatusCancelled
	case CommissionStatusApproved:
		return to == CommissionStatusPaid || to == CommissionStatusCancelled
	}
	return false
}

// Commission monto adeudado a un vendedor por una venta.
type Commission struct {
	ID         string
	SaleID     string
	SellerID   string
	Amount     decimal.Decimal
	Rate       decimal.Decimal
	Status     CommissionStatus
	ApprovedBy string
	ApprovedAt *time.Time
	PaidAt     *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
