package dto

import "github.com/jhoicas/seguros-api/internal/domain/metrics"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	Pipeline    metrics.Pipeline    `json:"pipeline"`
	Sales       metrics.Sales       `json:"sales"`
	Commissions metrics.Commissions `json:"commissions"`

	// Solo el período en curso (mes calendario)
	MonthSales metrics.Sales `json:"month_sales"`
	DateLabel  string        `json:"date_label"` // ej: "Octubre 2026"
}
