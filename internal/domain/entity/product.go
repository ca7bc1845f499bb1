package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product plan/seguro comercializado.
type Product struct {
	ID             string
	Name           string
	Insurer        string // aseguradora que emite la póliza
	Category       string // vida, auto, salud, hogar…
	Description    string
	Price          decimal.Decimal
	CommissionRate decimal.Decimal // porcentaje (0–100) sobre el valor de la venta
	Coverages      []string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
