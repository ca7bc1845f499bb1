// Package metrics calcula los indicadores derivados del dashboard a partir
// de listas en memoria o de conteos por estado hechos en la base. Todas las
// funciones aceptan entradas vacías y nunca dividen por cero.
package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

var hundred = decimal.NewFromInt(100)

// Percentage devuelve part/total*100 redondeado a 2 decimales; 0 si total es 0.
func Percentage(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred).Round(2)
}

// PercentageInt atajo de Percentage para conteos.
func PercentageInt(part, total int) decimal.Decimal {
	return Percentage(decimal.NewFromInt(int64(part)), decimal.NewFromInt(int64(total)))
}

// SumDecimal suma los valores devueltos por get.
func SumDecimal[T any](items []T, get func(T) decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(get(it))
	}
	return sum
}

// CountBy agrupa y cuenta por la clave devuelta por key.
func CountBy[T any, K comparable](items []T, key func(T) K) map[K]int {
	out := make(map[K]int)
	for _, it := range items {
		out[key(it)]++
	}
	return out
}

// Pipeline indicadores del funil de leads.
type Pipeline struct {
	Total          int                       `json:"total"`
	ByStatus       map[entity.LeadStatus]int `json:"by_status"`
	Open           int                       `json:"open"`
	Paid           int                       `json:"paid"`
	Lost           int                       `json:"lost"`
	ConversionRate decimal.Decimal           `json:"conversion_rate"` // paid / total * 100
	LossRate       decimal.Decimal           `json:"loss_rate"`
	EstimatedValue decimal.Decimal           `json:"estimated_value"` // suma de leads abiertos
}

// TotalsBy agrupa items por estado contando y sumando amount, igual que un
// GROUP BY status en SQL.
func TotalsBy[T any](items []T, status func(T) string, amount func(T) decimal.Decimal) []repository.StatusTotal {
	idx := make(map[string]int)
	var out []repository.StatusTotal
	for _, it := range items {
		st := status(it)
		i, ok := idx[st]
		if !ok {
			i = len(out)
			idx[st] = i
			out = append(out, repository.StatusTotal{Status: st, Amount: decimal.Zero})
		}
		out[i].Count++
		out[i].Amount = out[i].Amount.Add(amount(it))
	}
	return out
}

// PipelineMetrics calcula el resumen del funil sobre una lista de leads.
func PipelineMetrics(leads []*entity.Lead) Pipeline {
	return PipelineFromTotals(TotalsBy(leads,
		func(l *entity.Lead) string { return string(l.Status) },
		func(l *entity.Lead) decimal.Decimal { return l.EstimatedValue }))
}

// PipelineFromTotals calcula el resumen del funil a partir de los conteos por
// estado. ByStatus incluye todos los estados declarados aunque tengan 0 leads.
func PipelineFromTotals(totals []repository.StatusTotal) Pipeline {
	p := Pipeline{
		ByStatus:       make(map[entity.LeadStatus]int, len(entity.LeadStatuses())),
		EstimatedValue: decimal.Zero,
	}
	for _, s := range entity.LeadStatuses() {
		p.ByStatus[s] = 0
	}
	for _, t := range totals {
		status := entity.LeadStatus(t.Status)
		p.Total += t.Count
		p.ByStatus[status] += t.Count
		switch status {
		case entity.LeadStatusPaid:
			p.Paid += t.Count
		case entity.LeadStatusLost:
			p.Lost += t.Count
		default:
			p.Open += t.Count
			p.EstimatedValue = p.EstimatedValue.Add(t.Amount)
		}
	}
	p.ConversionRate = PercentageInt(p.Paid, p.Total)
	p.LossRate = PercentageInt(p.Lost, p.Total)
	return p
}

// Sales indicadores de ventas.
type Sales struct {
	Count         int             `json:"count"`
	PaidCount     int             `json:"paid_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
	AverageTicket decimal.Decimal `json:"average_ticket"` // sobre ventas pagadas
	PaidRate      decimal.Decimal `json:"paid_rate"`
}

// SalesMetrics resume una lista de ventas.
func SalesMetrics(sales []*entity.Sale) Sales {
	return SalesFromTotals(TotalsBy(sales,
		func(s *entity.Sale) string { return string(s.Status) },
		func(s *entity.Sale) decimal.Decimal { return s.Amount }))
}

// SalesFromTotals resume ventas por estado; canceladas y reembolsadas cuentan
// en Count pero no en montos.
func SalesFromTotals(totals []repository.StatusTotal) Sales {
	m := Sales{
		TotalAmount:   decimal.Zero,
		PaidAmount:    decimal.Zero,
		PendingAmount: decimal.Zero,
		AverageTicket: decimal.Zero,
	}
	for _, t := range totals {
		m.Count += t.Count
		switch entity.SaleStatus(t.Status) {
		case entity.SaleStatusPaid:
			m.PaidCount += t.Count
			m.PaidAmount = m.PaidAmount.Add(t.Amount)
			m.TotalAmount = m.TotalAmount.Add(t.Amount)
		case entity.SaleStatusPending:
			m.PendingAmount = m.PendingAmount.Add(t.Amount)
			m.TotalAmount = m.TotalAmount.Add(t.Amount)
		}
	}
	if m.PaidCount > 0 {
		m.AverageTicket = m.PaidAmount.Div(decimal.NewFromInt(int64(m.PaidCount))).Round(2)
	}
	m.PaidRate = PercentageInt(m.PaidCount, m.Count)
	return m
}

// Commissions totales de comisiones por estado.
type Commissions struct {
	Count     int                                         `json:"count"`
	Total     decimal.Decimal                             `json:"total"`
	ByStatus  map[entity.CommissionStatus]decimal.Decimal `json:"by_status"`
	PaidShare decimal.Decimal                             `json:"paid_share"` // pagado / total (sin canceladas) * 100
}

// CommissionMetrics suma una lista de comisiones por estado.
func CommissionMetrics(list []*entity.Commission) Commissions {
	return CommissionsFromTotals(TotalsBy(list,
		func(c *entity.Commission) string { return string(c.Status) },
		func(c *entity.Commission) decimal.Decimal { return c.Amount }))
}

// CommissionsFromTotals suma montos por estado. Total excluye canceladas.
func CommissionsFromTotals(totals []repository.StatusTotal) Commissions {
	m := Commissions{
		Total:    decimal.Zero,
		ByStatus: make(map[entity.CommissionStatus]decimal.Decimal, len(entity.CommissionStatuses())),
	}
	for _, s := range entity.CommissionStatuses() {
		m.ByStatus[s] = decimal.Zero
	}
	for _, t := range totals {
		status := entity.CommissionStatus(t.Status)
		m.Count += t.Count
		m.ByStatus[status] = m.ByStatus[status].Add(t.Amount)
		if status != entity.CommissionStatusCancelled {
			m.Total = m.Total.Add(t.Amount)
		}
	}
	m.PaidShare = Percentage(m.ByStatus[entity.CommissionStatusPaid], m.Total)
	return m
}

// Campaign tasas de una campaña de recuperación.
type Campaign struct {
	TargetCount    int             `json:"target_count"`
	SentCount      int             `json:"sent_count"`
	FailedCount    int             `json:"failed_count"`
	RecoveredCount int             `json:"recovered_count"`
	DeliveryRate   decimal.Decimal `json:"delivery_rate"` // enviados / objetivo
	RecoveryRate   decimal.Decimal `json:"recovery_rate"` // recuperados / enviados
	Progress       decimal.Decimal `json:"progress"`      // (enviados+fallidos) / objetivo
}

// CampaignMetrics calcula las tasas de una campaña.
func CampaignMetrics(c *entity.RecoveryCampaign) Campaign {
	if c == nil {
		return Campaign{DeliveryRate: decimal.Zero, RecoveryRate: decimal.Zero, Progress: decimal.Zero}
	}
	return Campaign{
		TargetCount:    c.TargetCount,
		SentCount:      c.SentCount,
		FailedCount:    c.FailedCount,
		RecoveredCount: c.RecoveredCount,
		DeliveryRate:   PercentageInt(c.SentCount, c.TargetCount),
		RecoveryRate:   PercentageInt(c.RecoveredCount, c.SentCount),
		Progress:       PercentageInt(c.SentCount+c.FailedCount, c.TargetCount),
	}
}
