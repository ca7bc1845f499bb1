package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

var _ repository.SystemConfigRepository = (*ConfigRepo)(nil)

// ConfigRepo pares clave/valor JSON de system_config.
type ConfigRepo struct {
	q Querier
}

// NewConfigRepository construye el adaptador.
func NewConfigRepository(q Querier) *ConfigRepo {
	return &ConfigRepo{q: q}
}

func scanConfig(row rowScanner) (*entity.SystemConfig, error) {
	var (
		c     entity.SystemConfig
		value []byte
	)
	if err := row.Scan(&c.Key, &value, &c.Description, &c.UpdatedBy, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Value = value
	return &c, nil
}

func (r *ConfigRepo) List(ctx context.Context) ([]*entity.SystemConfig, error) {
	rows, err := r.q.Query(ctx, `SELECT key, value, description, updated_by, updated_at FROM system_config ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list system config: %w", err)
	}
	return collect(rows, scanConfig)
}

func (r *ConfigRepo) Get(ctx context.Context, key string) (*entity.SystemConfig, error) {
	c, err := scanConfig(r.q.QueryRow(ctx,
		`SELECT key, value, description, updated_by, updated_at FROM system_config WHERE key = $1`, key))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get system config: %w", err)
	}
	return c, nil
}

func (r *ConfigRepo) Upsert(ctx context.Context, c *entity.SystemConfig) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO system_config (key, value, description, updated_by, updated_at)
		VALUES ($1, $2::jsonb, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE SET
		       value = EXCLUDED.value, description = EXCLUDED.description,
		       updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`,
		c.Key, jsonOrEmpty(c.Value), c.Description, c.UpdatedBy, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert system config: %w", err)
	}
	return nil
}
