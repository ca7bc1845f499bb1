package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/filter"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

var maxCommissionRate = decimal.NewFromInt(100)

// ProductUseCase casos de uso CRUD para productos de seguro.
type ProductUseCase struct {
	repo    repository.ProductRepository
	changes *Changes
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, changes *Changes) *ProductUseCase {
	return &ProductUseCase{repo: repo, changes: changes}
}

// Create crea un producto. Por defecto queda activo.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := validateProductAmounts(in.Price, in.CommissionRate); err != nil {
		return nil, err
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	now := time.Now().UTC()
	product := &entity.Product{
		ID:             uuid.New().String(),
		Name:           in.Name,
		Insurer:        in.Insurer,
		Category:       in.Category,
		Description:    in.Description,
		Price:          in.Price,
		CommissionRate: in.CommissionRate,
		Coverages:      in.Coverages,
		Active:         active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	uc.changes.Publish(ctx, "products", ports.EventInsert, product.ID)
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. Las ventas ya registradas conservan su comisión.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Insurer != nil {
		product.Insurer = *in.Insurer
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.CommissionRate != nil {
		product.CommissionRate = *in.CommissionRate
	}
	if in.Coverages != nil {
		product.Coverages = in.Coverages
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	if err := validateProductAmounts(product.Price, product.CommissionRate); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	uc.changes.Publish(ctx, "products", ports.EventUpdate, product.ID)
	return toProductResponse(product), nil
}

// List lista productos; activeOnly oculta los descontinuados.
func (uc *ProductUseCase) List(ctx context.Context, activeOnly bool, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	window := filter.Page(list, page.Limit, page.Offset)
	items := make([]dto.ProductResponse, 0, len(window))
	for _, p := range window {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(list)},
	}, nil
}

func validateProductAmounts(price, rate decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: price no puede ser negativo", domain.ErrInvalidInput)
	}
	if rate.IsNegative() || rate.GreaterThan(maxCommissionRate) {
		return fmt.Errorf("%w: commission_rate debe estar entre 0 y 100", domain.ErrInvalidInput)
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	coverages := p.Coverages
	if coverages == nil {
		coverages = []string{}
	}
	return &dto.ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Insurer:        p.Insurer,
		Category:       p.Category,
		Description:    p.Description,
		Price:          p.Price,
		CommissionRate: p.CommissionRate,
		Coverages:      coverages,
		Active:         p.Active,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
