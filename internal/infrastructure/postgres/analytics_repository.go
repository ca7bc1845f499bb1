package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo agregados de solo lectura para dashboard y compliance.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// LeadTotals cuenta leads y suma estimated_value por estado.
func (r *AnalyticsRepo) LeadTotals(ctx context.Context, sellerID string) ([]repository.StatusTotal, error) {
	var c conds
	if sellerID != "" {
		c.add("seller_id = $%d", sellerID)
	}
	return r.statusTotals(ctx, "analytics.LeadTotals", `
	SELECT status, COUNT(*), COALESCE(SUM(estimated_value), 0)
	FROM leads`+c.where()+`
	GROUP BY status`, c.args...)
}

// SaleTotals cuenta ventas y suma amount por estado.
func (r *AnalyticsRepo) SaleTotals(ctx context.Context, sellerID string, since time.Time) ([]repository.StatusTotal, error) {
	var c conds
	if sellerID != "" {
		c.add("seller_id = $%d", sellerID)
	}
	if !since.IsZero() {
		c.add("created_at >= $%d", since)
	}
	return r.statusTotals(ctx, "analytics.SaleTotals", `
	SELECT status, COUNT(*), COALESCE(SUM(amount), 0)
	FROM sales`+c.where()+`
	GROUP BY status`, c.args...)
}

// CommissionTotals cuenta comisiones y suma amount por estado.
func (r *AnalyticsRepo) CommissionTotals(ctx context.Context, sellerID string) ([]repository.StatusTotal, error) {
	var c conds
	if sellerID != "" {
		c.add("seller_id = $%d", sellerID)
	}
	return r.statusTotals(ctx, "analytics.CommissionTotals", `
	SELECT status, COUNT(*), COALESCE(SUM(amount), 0)
	FROM commissions`+c.where()+`
	GROUP BY status`, c.args...)
}

func (r *AnalyticsRepo) statusTotals(ctx context.Context, op, query string, args ...any) ([]repository.StatusTotal, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []repository.StatusTotal
	for rows.Next() {
		var t repository.StatusTotal
		if err := rows.Scan(&t.Status, &t.Count, &t.Amount); err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AuditSummary agrupa audit_logs del período por acción, tipo de entidad y
// usuario en una sola pasada (GROUPING SETS).
func (r *AnalyticsRepo) AuditSummary(ctx context.Context, from, to time.Time) (*repository.AuditSummary, error) {
	const query = `
	SELECT
	    GROUPING(action)                  AS no_action,
	    GROUPING(entity_type)             AS no_entity,
	    COALESCE(action, '')              AS action,
	    COALESCE(entity_type, '')         AS entity_type,
	    COALESCE(user_id, '')             AS user_id,
	    COUNT(*)                          AS n
	FROM audit_logs
	WHERE created_at >= $1
	  AND created_at <= $2
	GROUP BY GROUPING SETS ((action), (entity_type), (user_id))`

	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("analytics.AuditSummary: %w", err)
	}
	defer rows.Close()

	s := &repository.AuditSummary{
		ByAction:     map[string]int{},
		ByEntityType: map[string]int{},
		ByUser:       map[string]int{},
	}
	for rows.Next() {
		var (
			noAction, noEntity int
			action, entityType string
			userID             string
			n                  int
		)
		if err := rows.Scan(&noAction, &noEntity, &action, &entityType, &userID, &n); err != nil {
			return nil, fmt.Errorf("analytics.AuditSummary scan: %w", err)
		}
		switch {
		case noAction == 0:
			s.ByAction[action] = n
			s.Total += n
		case noEntity == 0:
			s.ByEntityType[entityType] = n
		default:
			s.ByUser[userID] += n
		}
	}
	return s, rows.Err()
}
