package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/display"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/filter"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// PolicyUseCase consulta de pólizas emitidas.
type PolicyUseCase struct {
	repo    repository.PolicyRepository
	storage ports.ObjectStorage
}

// NewPolicyUseCase construye el caso de uso.
func NewPolicyUseCase(repo repository.PolicyRepository, storage ports.ObjectStorage) *PolicyUseCase {
	return &PolicyUseCase{repo: repo, storage: storage}
}

// List lista pólizas; status vacío o "all" no filtra.
func (uc *PolicyUseCase) List(ctx context.Context, status string, page dto.PageRequest) (*dto.PolicyListResponse, error) {
	page.DefaultPage()
	var st entity.PolicyStatus
	if status != "" && status != filter.StatusAll {
		st = entity.PolicyStatus(status)
	}
	list, err := uc.repo.List(ctx, st, listScanLimit)
	if err != nil {
		return nil, err
	}
	paged := filter.Page(list, page.Limit, page.Offset)
	items := make([]dto.PolicyResponse, 0, len(paged))
	for _, p := range paged {
		items = append(items, *toPolicyResponse(p))
	}
	return &dto.PolicyListResponse{
		Items: items,
		Page:  pageResponse(page.Limit, page.Offset, len(list), len(list)),
	}, nil
}

// GetByID obtiene una póliza (nil si no existe).
func (uc *PolicyUseCase) GetByID(ctx context.Context, id string) (*dto.PolicyResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	return toPolicyResponse(p), nil
}

// WelcomeKitURL devuelve una URL temporal para descargar el kit de bienvenida.
func (uc *PolicyUseCase) WelcomeKitURL(ctx context.Context, id string) (*dto.WelcomeKitURLResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if p.WelcomeKitKey == "" {
		return nil, fmt.Errorf("%w: la póliza %s aún no tiene kit de bienvenida", domain.ErrNotFound, p.Number)
	}
	url, err := uc.storage.DownloadURL(ctx, p.WelcomeKitKey)
	if err != nil {
		return nil, fmt.Errorf("url del kit %s: %w", p.WelcomeKitKey, err)
	}
	return &dto.WelcomeKitURLResponse{PolicyID: p.ID, URL: url}, nil
}

func toPolicyResponse(p *entity.Policy) *dto.PolicyResponse {
	return &dto.PolicyResponse{
		ID:             p.ID,
		Number:         p.Number,
		SaleID:         p.SaleID,
		ClientID:       p.ClientID,
		ProductID:      p.ProductID,
		Status:         string(p.Status),
		StatusBadge:    display.PolicyStatus(p.Status),
		Premium:        p.Premium,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		HasWelcomeKit:  p.WelcomeKitKey != "",
		WelcomeKitSent: p.WelcomeKitSent,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
