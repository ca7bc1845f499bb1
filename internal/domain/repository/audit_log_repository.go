package repository

import (
	"context"
	"time"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
)

// AuditLogFilter filtros SQL del registro de auditoría.
type AuditLogFilter struct {
	Action     string
	EntityType string
	UserID     string
	From       time.Time
	To         time.Time
	Limit      int
}

// AuditLogRepository persiste y consulta el registro de auditoría (append-only).
type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	List(ctx context.Context, f AuditLogFilter) ([]*entity.AuditLog, error)
}
