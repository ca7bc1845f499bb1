package repository

import (
	"context"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
)

// SaleListFilter filtros SQL para ventas.
type SaleListFilter struct {
	Status   entity.SaleStatus
	SellerID string
	Limit    int
}

// SaleRepository define el puerto de persistencia para Sale.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetPaidByLeadID devuelve la venta pagada del lead (nil si no hay).
	GetPaidByLeadID(ctx context.Context, leadID string) (*entity.Sale, error)
	Update(ctx context.Context, sale *entity.Sale) error
	List(ctx context.Context, f SaleListFilter) ([]*entity.Sale, error)
}

// PaymentRepository define el puerto de persistencia para Payment.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	ListBySale(ctx context.Context, saleID string) ([]*entity.Payment, error)
}
