package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo registro de auditoría. Solo INSERT y SELECT.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

func (r *AuditLogRepo) Create(ctx context.Context, l *entity.AuditLog) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, details, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8)`,
		l.ID, nullString(l.UserID), l.Action, l.EntityType, l.EntityID, jsonOrEmpty(l.Details), l.IPAddress, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List más recientes primero.
func (r *AuditLogRepo) List(ctx context.Context, f repository.AuditLogFilter) ([]*entity.AuditLog, error) {
	var c conds
	if f.Action != "" {
		c.add("action = $%d", f.Action)
	}
	if f.EntityType != "" {
		c.add("entity_type = $%d", f.EntityType)
	}
	if f.UserID != "" {
		c.add("user_id = $%d", f.UserID)
	}
	if !f.From.IsZero() {
		c.add("created_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		c.add("created_at <= $%d", f.To)
	}
	query := `SELECT id, COALESCE(user_id, ''), action, entity_type, entity_id, details, ip_address, created_at
		FROM audit_logs` + c.where() + ` ORDER BY created_at DESC` + c.limit(f.Limit)
	rows, err := r.q.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return collect(rows, func(row rowScanner) (*entity.AuditLog, error) {
		var (
			l       entity.AuditLog
			details []byte
		)
		if err := row.Scan(&l.ID, &l.UserID, &l.Action, &l.EntityType, &l.EntityID, &details, &l.IPAddress, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		l.Details = details
		return &l, nil
	})
}
