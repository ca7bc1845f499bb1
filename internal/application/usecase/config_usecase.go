package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// ConfigUseCase claves de configuración editables por administradores.
type ConfigUseCase struct {
	repo    repository.SystemConfigRepository
	changes *Changes
}

// NewConfigUseCase construye el caso de uso.
func NewConfigUseCase(repo repository.SystemConfigRepository, changes *Changes) *ConfigUseCase {
	return &ConfigUseCase{repo: repo, changes: changes}
}

// List devuelve todas las claves.
func (uc *ConfigUseCase) List(ctx context.Context) ([]dto.SystemConfigResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SystemConfigResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toConfigResponse(c))
	}
	return out, nil
}

// Get devuelve una clave (nil si no existe).
func (uc *ConfigUseCase) Get(ctx context.Context, key string) (*dto.SystemConfigResponse, error) {
	c, err := uc.repo.Get(ctx, key)
	if err != nil || c == nil {
		return nil, err
	}
	out := toConfigResponse(c)
	return &out, nil
}

// Upsert crea o reemplaza una clave. El valor debe ser JSON válido.
func (uc *ConfigUseCase) Upsert(ctx context.Context, actor Actor, key string, in dto.UpsertConfigRequest) (*dto.SystemConfigResponse, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: la clave es obligatoria", domain.ErrInvalidInput)
	}
	if len(in.Value) == 0 || !json.Valid(in.Value) {
		return nil, fmt.Errorf("%w: value debe ser JSON válido", domain.ErrInvalidInput)
	}
	c := &entity.SystemConfig{
		Key:         key,
		Value:       in.Value,
		Description: in.Description,
		UpdatedBy:   actor.UserID,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := uc.repo.Upsert(ctx, c); err != nil {
		return nil, err
	}
	if err := uc.changes.Audit(ctx, nil, actor, "config.updated", "system_config", key, map[string]any{
		"value": in.Value,
	}); err != nil {
		return nil, err
	}
	uc.changes.Publish(ctx, "system_config", ports.EventUpdate, key)
	out := toConfigResponse(c)
	return &out, nil
}

func toConfigResponse(c *entity.SystemConfig) dto.SystemConfigResponse {
	return dto.SystemConfigResponse{
		Key:         c.Key,
		Value:       c.Value,
		Description: c.Description,
		UpdatedBy:   c.UpdatedBy,
		UpdatedAt:   c.UpdatedAt,
	}
}
