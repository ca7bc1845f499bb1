package repository

import (
	"context"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
)

// RecoveryCampaignRepository define el puerto de persistencia para campañas.
type RecoveryCampaignRepository interface {
	Create(ctx context.Context, c *entity.RecoveryCampaign) error
	GetByID(ctx context.Context, id string) (*entity.RecoveryCampaign, error)
	// Update no toca los contadores sent/failed/recovered: solo cambian con Increment*.
	Update(ctx context.Context, c *entity.RecoveryCampaign) error
	List(ctx context.Context, limit int) ([]*entity.RecoveryCampaign, error)
	// IncrementCounters suma atómicamente enviados/fallidos y completa la
	// campaña cuando sent+failed alcanza target_count.
	IncrementCounters(ctx context.Context, id string, sent, failed int) error
	IncrementRecovered(ctx context.Context, id string) error
}
