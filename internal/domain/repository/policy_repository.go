package repository

import (
	"context"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
)

// PolicyRepository define el puerto de persistencia para Policy.
type PolicyRepository interface {
	Create(ctx context.Context, policy *entity.Policy) error
	GetByID(ctx context.Context, id string) (*entity.Policy, error)
	GetBySaleID(ctx context.Context, saleID string) (*entity.Policy, error)
	Update(ctx context.Context, policy *entity.Policy) error
	List(ctx context.Context, status entity.PolicyStatus, limit int) ([]*entity.Policy, error)
}
