package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/filter"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// ClientUseCase casos de uso CRUD para titulares de pólizas.
type ClientUseCase struct {
	repo    repository.ClientRepository
	changes *Changes
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository, changes *Changes) *ClientUseCase {
	return &ClientUseCase{repo: repo, changes: changes}
}

// Create crea un cliente. El documento es único.
func (uc *ClientUseCase) Create(ctx context.Context, in dto.CreateClientRequest) (*dto.ClientResponse, error) {
	doc := strings.TrimSpace(in.Document)
	existing, err := uc.repo.GetByDocument(ctx, doc)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now().UTC()
	client := &entity.Client{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     in.Phone,
		Document:  doc,
		BirthDate: in.BirthDate,
		Address:   in.Address,
		City:      in.City,
		State:     in.State,
		LeadID:    in.LeadID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	uc.changes.Publish(ctx, "clients", ports.EventInsert, client.ID)
	return toClientResponse(client), nil
}

// GetByID obtiene un cliente por ID.
func (uc *ClientUseCase) GetByID(ctx context.Context, id string) (*dto.ClientResponse, error) {
	client, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, nil
	}
	return toClientResponse(client), nil
}

// Update actualiza un cliente. El documento no se modifica.
func (uc *ClientUseCase) Update(ctx context.Context, id string, in dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	client, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, nil
	}
	if in.Name != nil {
		client.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		client.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		client.Phone = *in.Phone
	}
	if in.BirthDate != nil {
		client.BirthDate = in.BirthDate
	}
	if in.Address != nil {
		client.Address = *in.Address
	}
	if in.City != nil {
		client.City = *in.City
	}
	if in.State != nil {
		client.State = *in.State
	}
	client.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, client); err != nil {
		return nil, err
	}
	uc.changes.Publish(ctx, "clients", ports.EventUpdate, client.ID)
	return toClientResponse(client), nil
}

// List lista clientes con búsqueda por texto y filtro por departamento.
func (uc *ClientUseCase) List(ctx context.Context, q dto.ClientListQuery) (*dto.ClientListResponse, error) {
	q.DefaultPage()
	list, err := uc.repo.List(ctx, listScanLimit)
	if err != nil {
		return nil, err
	}
	matched := filter.Apply(list, func(c *entity.Client) bool {
		return filter.MatchClient(c, filter.ClientFilter{Search: q.Search, State: q.State})
	})
	page := filter.Page(matched, q.Limit, q.Offset)
	items := make([]dto.ClientResponse, 0, len(page))
	for _, c := range page {
		items = append(items, *toClientResponse(c))
	}
	return &dto.ClientListResponse{
		Items: items,
		Page:  pageResponse(q.Limit, q.Offset, len(matched), len(list)),
	}, nil
}

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Document:  c.Document,
		BirthDate: c.BirthDate,
		Address:   c.Address,
		City:      c.City,
		State:     c.State,
		LeadID:    c.LeadID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
