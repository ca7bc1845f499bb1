package repository

import (
	"context"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
)

// SystemConfigRepository define el puerto de persistencia para SystemConfig.
type SystemConfigRepository interface {
	List(ctx context.Context) ([]*entity.SystemConfig, error)
	Get(ctx context.Context, key string) (*entity.SystemConfig, error)
	Upsert(ctx context.Context, cfg *entity.SystemConfig) error
}
