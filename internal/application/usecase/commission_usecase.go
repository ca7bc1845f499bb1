package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/display"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/filter"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// CommissionUseCase aprobación y pago de comisiones de vendedores.
type CommissionUseCase struct {
	repo    repository.CommissionRepository
	users   repository.UserRepository
	notifs  repository.NotificationRepository
	changes *Changes
}

// NewCommissionUseCase construye el caso de uso.
func NewCommissionUseCase(
	repo repository.CommissionRepository,
	users repository.UserRepository,
	notifs repository.NotificationRepository,
	changes *Changes,
) *CommissionUseCase {
	return &CommissionUseCase{repo: repo, users: users, notifs: notifs, changes: changes}
}

// List lista comisiones. Un seller solo ve las suyas.
func (uc *CommissionUseCase) List(ctx context.Context, actor Actor, q dto.CommissionListQuery) (*dto.CommissionListResponse, error) {
	q.DefaultPage()
	if actor.IsSeller() {
		q.SellerID = actor.UserID
	}
	f := repository.CommissionListFilter{SellerID: q.SellerID, Limit: listScanLimit}
	if q.Status != "" && q.Status != filter.StatusAll {
		f.Status = entity.CommissionStatus(q.Status)
	}
	list, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	names := map[string]string{}
	matched := filter.Apply(list, func(c *entity.Commission) bool {
		return filter.MatchCommission(c, uc.sellerName(ctx, c.SellerID, names), filter.CommissionFilter{
			Search: q.Search, Status: q.Status, SellerID: q.SellerID,
		})
	})
	page := filter.Page(matched, q.Limit, q.Offset)
	items := make([]dto.CommissionResponse, 0, len(page))
	for _, c := range page {
		items = append(items, *toCommissionResponse(c, names[c.SellerID]))
	}
	return &dto.CommissionListResponse{
		Items: items,
		Page:  pageResponse(q.Limit, q.Offset, len(matched), len(list)),
	}, nil
}

// Approve pending → approved.
func (uc *CommissionUseCase) Approve(ctx context.Context, actor Actor, id string) (*dto.CommissionResponse, error) {
	return uc.transition(ctx, actor, id, entity.CommissionStatusApproved)
}

// Pay approved → paid.
func (uc *CommissionUseCase) Pay(ctx context.Context, actor Actor, id string) (*dto.CommissionResponse, error) {
	return uc.transition(ctx, actor, id, entity.CommissionStatusPaid)
}

// Cancel pending|approved → cancelled.
func (uc *CommissionUseCase) Cancel(ctx context.Context, actor Actor, id string) (*dto.CommissionResponse, error) {
	return uc.transition(ctx, actor, id, entity.CommissionStatusCancelled)
}

func (uc *CommissionUseCase) transition(ctx context.Context, actor Actor, id string, to entity.CommissionStatus) (*dto.CommissionResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if !c.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: comisión %s → %s", domain.ErrInvalidTransition, c.Status, to)
	}
	from := c.Status
	now := time.Now().UTC()
	c.Status = to
	c.UpdatedAt = now
	switch to {
	case entity.CommissionStatusApproved:
		c.ApprovedBy = actor.UserID
		c.ApprovedAt = &now
	case entity.CommissionStatusPaid:
		c.PaidAt = &now
	}
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	if err := uc.changes.Audit(ctx, nil, actor, "commission."+string(to), "commission", c.ID, map[string]any{
		"from": from, "to": to, "amount": c.Amount,
	}); err != nil {
		return nil, err
	}
	uc.changes.Publish(ctx, "commissions", ports.EventUpdate, c.ID)

	if c.SellerID != "" && c.SellerID != actor.UserID {
		n := &entity.Notification{
			UserID: c.SellerID,
			Type:   entity.NotificationInfo,
			Link:   "/commissions",
		}
		switch to {
		case entity.CommissionStatusApproved:
			n.Type, n.Title = entity.NotificationSuccess, "Comisión aprobada"
			n.Message = fmt.Sprintf("Tu comisión de %s fue aprobada.", c.Amount.StringFixed(2))
		case entity.CommissionStatusPaid:
			n.Type, n.Title = entity.NotificationSuccess, "Comisión pagada"
			n.Message = fmt.Sprintf("Se pagó tu comisión de %s.", c.Amount.StringFixed(2))
		default:
			n.Type, n.Title = entity.NotificationWarning, "Comisión cancelada"
			n.Message = fmt.Sprintf("Tu comisión de %s fue cancelada.", c.Amount.StringFixed(2))
		}
		uc.changes.Notify(ctx, uc.notifs, n)
	}
	return toCommissionResponse(c, ""), nil
}

func (uc *CommissionUseCase) sellerName(ctx context.Context, sellerID string, cache map[string]string) string {
	if n, ok := cache[sellerID]; ok {
		return n
	}
	name := ""
	if sellerID != "" {
		if u, err := uc.users.GetByID(ctx, sellerID); err == nil && u != nil {
			name = u.Name
		}
	}
	cache[sellerID] = name
	return name
}

func toCommissionResponse(c *entity.Commission, sellerName string) *dto.CommissionResponse {
	return &dto.CommissionResponse{
		ID:          c.ID,
		SaleID:      c.SaleID,
		SellerID:    c.SellerID,
		SellerName:  sellerName,
		Amount:      c.Amount,
		Rate:        c.Rate,
		Status:      string(c.Status),
		StatusBadge: display.CommissionStatus(c.Status),
		ApprovedBy:  c.ApprovedBy,
		ApprovedAt:  c.ApprovedAt,
		PaidAt:      c.PaidAt,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
