package repository

import (
	"context"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
)

// CommissionListFilter filtros SQL para comisiones.
type CommissionListFilter struct {
	Status   entity.CommissionStatus
	SellerID string
	Limit    int
}

// CommissionRepository define el puerto de persistencia para Commission.
type CommissionRepository interface {
	Create(ctx context.Context, commission *entity.Commission) error
	GetByID(ctx context.Context, id string) (*entity.Commission, error)
	GetBySaleID(ctx context.Context, saleID string) (*entity.Commission, error)
	Update(ctx context.Context, commission *entity.Commission) error
	List(ctx context.Context, f CommissionListFilter) ([]*entity.Commission, error)
}
