package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/metrics"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// Analytics devuelve el adaptador de agregados del store.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{s} }

// AnalyticsRepo agrega sobre todas las filas del store, como el GROUP BY de
// PostgreSQL.
type AnalyticsRepo struct{ s *Store }

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

func (r *AnalyticsRepo) LeadTotals(_ context.Context, sellerID string) ([]repository.StatusTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := make([]*entity.Lead, 0, len(r.s.leads))
	for _, l := range r.s.leads {
		if sellerID == "" || l.SellerID == sellerID {
			rows = append(rows, l)
		}
	}
	return metrics.TotalsBy(rows,
		func(l *entity.Lead) string { return string(l.Status) },
		func(l *entity.Lead) decimal.Decimal { return l.EstimatedValue }), nil
}

func (r *AnalyticsRepo) SaleTotals(_ context.Context, sellerID string, since time.Time) ([]repository.StatusTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := make([]*entity.Sale, 0, len(r.s.sales))
	for _, sale := range r.s.sales {
		if sellerID != "" && sale.SellerID != sellerID {
			continue
		}
		if !since.IsZero() && sale.CreatedAt.Before(since) {
			continue
		}
		rows = append(rows, sale)
	}
	return metrics.TotalsBy(rows,
		func(s *entity.Sale) string { return string(s.Status) },
		func(s *entity.Sale) decimal.Decimal { return s.Amount }), nil
}

func (r *AnalyticsRepo) CommissionTotals(_ context.Context, sellerID string) ([]repository.StatusTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := make([]*entity.Commission, 0, len(r.s.commissions))
	for _, c := range r.s.commissions {
		if sellerID == "" || c.SellerID == sellerID {
			rows = append(rows, c)
		}
	}
	return metrics.TotalsBy(rows,
		func(c *entity.Commission) string { return string(c.Status) },
		func(c *entity.Commission) decimal.Decimal { return c.Amount }), nil
}

func (r *AnalyticsRepo) AuditSummary(_ context.Context, from, to time.Time) (*repository.AuditSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := make([]*entity.AuditLog, 0, len(r.s.auditLogs))
	for _, l := range r.s.auditLogs {
		if l.CreatedAt.Before(from) || l.CreatedAt.After(to) {
			continue
		}
		rows = append(rows, l)
	}
	return &repository.AuditSummary{
		Total:        len(rows),
		ByAction:     metrics.CountBy(rows, func(a *entity.AuditLog) string { return a.Action }),
		ByEntityType: metrics.CountBy(rows, func(a *entity.AuditLog) string { return a.EntityType }),
		ByUser:       metrics.CountBy(rows, func(a *entity.AuditLog) string { return a.UserID }),
	}, nil
}
