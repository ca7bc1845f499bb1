package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StatusTotal resultado crudo de un GROUP BY status: cantidad de filas y suma
// del monto (estimated_value en leads, amount en ventas y comisiones).
type StatusTotal struct {
	Status string
	Count  int
	Amount decimal.Decimal
}

// AuditSummary conteos del registro de auditoría en un período.
// ByUser usa "" para las acciones del sistema.
type AuditSummary struct {
	Total        int
	ByAction     map[string]int
	ByEntityType map[string]int
	ByUser       map[string]int
}

// AnalyticsRepository consultas agregadas de solo lectura para el dashboard y
// el reporte de compliance. Las implementaciones cuentan en la base, sin
// límite de filas.
type AnalyticsRepository interface {
	// LeadTotals leads por estado. sellerID vacío = todos.
	LeadTotals(ctx context.Context, sellerID string) ([]StatusTotal, error)

	// SaleTotals ventas por estado creadas desde since (cero = sin corte).
	SaleTotals(ctx context.Context, sellerID string, since time.Time) ([]StatusTotal, error)

	// CommissionTotals comisiones por estado.
	CommissionTotals(ctx context.Context, sellerID string) ([]StatusTotal, error)

	// AuditSummary agrupa el registro de auditoría en [from, to].
	AuditSummary(ctx context.Context, from, to time.Time) (*AuditSummary, error)
}
