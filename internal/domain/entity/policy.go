package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PolicyStatus estado de una póliza emitida.
type PolicyStatus string

const (
	PolicyStatusPendingEmission PolicyStatus = "pending_emission"
	PolicyStatusActive          PolicyStatus = "active"
	PolicyStatusCancelled       PolicyStatus = "cancelled"
	PolicyStatusExpired         PolicyStatus = "expired"
)

// PolicyStatuses devuelve todos los estados declarados.
func PolicyStatuses() []PolicyStatus {
	return []PolicyStatus{PolicyStatusPendingEmission, PolicyStatusActive, PolicyStatusCancelled, PolicyStatusExpired}
}

// Policy contrato de seguro emitido para una venta pagada.
type Policy struct {
	ID             string
	Number         string // POL-YYYYMMDD-XXXXXX
	SaleID         string
	ClientID       string
	ProductID      string
	Status         PolicyStatus
	Premium        decimal.Decimal
	StartDate      time.Time
	EndDate        time.Time
	WelcomeKitKey  string // clave en object storage del PDF del kit de bienvenida
	WelcomeKitSent *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
