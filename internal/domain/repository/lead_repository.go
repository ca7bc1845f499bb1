package repository

import (
	"context"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
)

// LeadListFilter filtros que se resuelven en SQL. La búsqueda por texto se
// aplica luego en memoria con domain/filter (insensible a acentos).
type LeadListFilter struct {
	Status   entity.LeadStatus
	SellerID string
	Limit    int
}

// LeadRepository define el puerto de persistencia para Lead.
type LeadRepository interface {
	Create(ctx context.Context, lead *entity.Lead) error
	GetByID(ctx context.Context, id string) (*entity.Lead, error)
	Update(ctx context.Context, lead *entity.Lead) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f LeadListFilter) ([]*entity.Lead, error)
}
