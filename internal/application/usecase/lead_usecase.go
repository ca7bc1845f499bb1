package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/seguros-api/internal/application/automation"
	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/display"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/filter"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// RecoveryTracker cuenta leads recuperados por campañas (lo implementa CampaignUseCase).
type RecoveryTracker interface {
	TrackRecovery(ctx context.Context, leadID string)
}

// LeadUseCase casos de uso del pipeline de leads.
type LeadUseCase struct {
	leads    repository.LeadRepository
	products repository.ProductRepository
	users    repository.UserRepository
	notifs   repository.NotificationRepository
	tx       ports.TxRunner
	closure  *automation.LeadClosure
	recovery RecoveryTracker // opcional
	changes  *Changes
}

// NewLeadUseCase construye el caso de uso.
func NewLeadUseCase(
	leads repository.LeadRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	notifs repository.NotificationRepository,
	tx ports.TxRunner,
	closure *automation.LeadClosure,
	changes *Changes,
) *LeadUseCase {
	return &LeadUseCase{leads: leads, products: products, users: users, notifs: notifs, tx: tx, closure: closure, changes: changes}
}

// WithRecoveryTracker conecta el conteo de recuperados de campañas.
func (uc *LeadUseCase) WithRecoveryTracker(t RecoveryTracker) *LeadUseCase {
	uc.recovery = t
	return uc
}

// Create crea un lead en estado new. Un seller que no indica vendedor queda como responsable.
func (uc *LeadUseCase) Create(ctx context.Context, actor Actor, in dto.CreateLeadRequest) (*dto.LeadResponse, error) {
	if in.EstimatedValue.IsNegative() {
		return nil, fmt.Errorf("%w: estimated_value no puede ser negativo", domain.ErrInvalidInput)
	}
	if err := uc.checkProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}
	sellerID := in.SellerID
	if sellerID == "" && actor.IsSeller() {
		sellerID = actor.UserID
	}
	if err := uc.checkSeller(ctx, sellerID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	lead := &entity.Lead{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:          in.Phone,
		Document:       in.Document,
		Source:         in.Source,
		Status:         entity.LeadStatusNew,
		ProductID:      in.ProductID,
		SellerID:       sellerID,
		EstimatedValue: in.EstimatedValue,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.leads.Create(ctx, lead); err != nil {
		return nil, err
	}
	if err := uc.changes.Audit(ctx, nil, actor, "lead.created", "lead", lead.ID, map[string]any{"source": lead.Source}); err != nil {
		return nil, err
	}
	uc.changes.Publish(ctx, "leads", ports.EventInsert, lead.ID)
	return toLeadResponse(lead), nil
}

// GetByID obtiene un lead; (nil, nil) si no existe o el seller no es el responsable.
func (uc *LeadUseCase) GetByID(ctx context.Context, actor Actor, id string) (*dto.LeadResponse, error) {
	lead, err := uc.leads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil || (actor.IsSeller() && lead.SellerID != actor.UserID) {
		return nil, nil
	}
	return toLeadResponse(lead), nil
}

// List aplica los filtros SQL (estado, vendedor) y luego la búsqueda por texto.
// Un seller solo ve sus leads.
func (uc *LeadUseCase) List(ctx context.Context, actor Actor, q dto.LeadListQuery) (*dto.LeadListResponse, error) {
	q.DefaultPage()
	if actor.IsSeller() {
		q.SellerID = actor.UserID
	}
	sqlFilter := repository.LeadListFilter{SellerID: q.SellerID, Limit: listScanLimit}
	if s := entity.LeadStatus(q.Status); s.Valid() {
		sqlFilter.Status = s
	}
	list, err := uc.leads.List(ctx, sqlFilter)
	if err != nil {
		return nil, err
	}
	matched := filter.Apply(list, func(l *entity.Lead) bool {
		return filter.MatchLead(l, filter.LeadFilter{Search: q.Search, Status: q.Status, SellerID: q.SellerID, Source: q.Source})
	})
	page := filter.Page(matched, q.Limit, q.Offset)
	items := make([]dto.LeadResponse, 0, len(page))
	for _, l := range page {
		items = append(items, *toLeadResponse(l))
	}
	return &dto.LeadListResponse{
		Items: items,
		Page:  pageResponse(q.Limit, q.Offset, len(matched), len(list)),
	}, nil
}

// Update modifica los datos del lead (no el estado).
func (uc *LeadUseCase) Update(ctx context.Context, actor Actor, id string, in dto.UpdateLeadRequest) (*dto.LeadResponse, error) {
	lead, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		lead.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		lead.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		lead.Phone = *in.Phone
	}
	if in.Document != nil {
		lead.Document = *in.Document
	}
	if in.Source != nil {
		lead.Source = *in.Source
	}
	if in.ProductID != nil {
		if err := uc.checkProduct(ctx, *in.ProductID); err != nil {
			return nil, err
		}
		lead.ProductID = *in.ProductID
	}
	if in.EstimatedValue != nil {
		if in.EstimatedValue.IsNegative() {
			return nil, fmt.Errorf("%w: estimated_value no puede ser negativo", domain.ErrInvalidInput)
		}
		lead.EstimatedValue = *in.EstimatedValue
	}
	if in.Notes != nil {
		lead.Notes = *in.Notes
	}
	lead.UpdatedAt = time.Now().UTC()
	if err := uc.leads.Update(ctx, lead); err != nil {
		return nil, err
	}
	if err := uc.changes.Audit(ctx, nil, actor, "lead.updated", "lead", lead.ID, nil); err != nil {
		return nil, err
	}
	uc.changes.Publish(ctx, "leads", ports.EventUpdate, lead.ID)
	return toLeadResponse(lead), nil
}

// UpdateStatus mueve el lead en el funil. El cambio, la auditoría y el
// encolado del cierre (si pasa a paid) se confirman en la misma transacción.
// Pasar a paid exige una venta pagada del lead; lo normal es llegar vía
// SaleUseCase.MarkPaid.
//
// Retorna domain.ErrInvalidTransition si las reglas del funil no lo permiten.
func (uc *LeadUseCase) UpdateStatus(ctx context.Context, actor Actor, id string, in dto.UpdateLeadStatusRequest) (*dto.LeadResponse, error) {
	to := entity.LeadStatus(in.Status)
	if !to.Valid() {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	var (
		updated *entity.Lead
		from    entity.LeadStatus
	)
	err := uc.tx.RunInTx(ctx, func(r ports.TxRepos) error {
		lead, err := r.Leads.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if lead == nil || (actor.IsSeller() && lead.SellerID != actor.UserID) {
			return domain.ErrNotFound
		}
		from = lead.Status
		saleID := ""
		if to == entity.LeadStatusPaid && from != entity.LeadStatusPaid {
			sale, err := r.Sales.GetPaidByLeadID(ctx, lead.ID)
			if err != nil {
				return err
			}
			if sale == nil {
				return fmt.Errorf("%w: el lead no tiene una venta pagada", domain.ErrInvalidTransition)
			}
			saleID = sale.ID
		}
		if err := applyLeadTransition(lead, to, in.LostReason, time.Now().UTC()); err != nil {
			return err
		}
		if err := r.Leads.Update(ctx, lead); err != nil {
			return err
		}
		if _, err := uc.closure.WithJobs(r.Jobs).OnStatusChanged(ctx, lead, from, to, saleID, actor.UserID); err != nil {
			return err
		}
		updated = lead
		return uc.changes.Audit(ctx, r.AuditLogs, actor, "lead.status_changed", "lead", lead.ID, map[string]any{
			"from": from, "to": to, "lost_reason": lead.LostReason,
		})
	})
	if err != nil {
		return nil, err
	}
	uc.changes.Publish(ctx, "leads", ports.EventUpdate, updated.ID)
	if to == entity.LeadStatusPaid && uc.recovery != nil {
		uc.recovery.TrackRecovery(ctx, updated.ID)
	}
	return toLeadResponse(updated), nil
}

// applyLeadTransition valida y aplica el cambio de estado sobre lead.
func applyLeadTransition(lead *entity.Lead, to entity.LeadStatus, lostReason string, now time.Time) error {
	if !lead.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, lead.Status, to)
	}
	switch to {
	case entity.LeadStatusLost:
		lead.LostReason = strings.TrimSpace(lostReason)
		lead.ClosedAt = &now
	case entity.LeadStatusPaid:
		lead.ClosedAt = &now
	case entity.LeadStatusNew:
		// Reapertura desde lost.
		lead.LostReason = ""
		lead.ClosedAt = nil
	}
	lead.Status = to
	lead.UpdatedAt = now
	return nil
}

// Assign asigna el lead a un vendedor activo y le notifica.
func (uc *LeadUseCase) Assign(ctx context.Context, actor Actor, id string, in dto.AssignLeadRequest) (*dto.LeadResponse, error) {
	lead, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := uc.checkSeller(ctx, in.SellerID); err != nil {
		return nil, err
	}
	previous := lead.SellerID
	lead.SellerID = in.SellerID
	lead.UpdatedAt = time.Now().UTC()
	if err := uc.leads.Update(ctx, lead); err != nil {
		return nil, err
	}
	if err := uc.changes.Audit(ctx, nil, actor, "lead.assigned", "lead", lead.ID, map[string]any{"from": previous, "to": in.SellerID}); err != nil {
		return nil, err
	}
	uc.changes.Publish(ctx, "leads", ports.EventUpdate, lead.ID)
	if in.SellerID != previous && in.SellerID != actor.UserID {
		uc.changes.Notify(ctx, uc.notifs, &entity.Notification{
			UserID:  in.SellerID,
			Type:    entity.NotificationInfo,
			Title:   "Nuevo lead asignado",
			Message: fmt.Sprintf("Se te asignó el lead %s.", lead.Name),
			Link:    "/leads/" + lead.ID,
		})
	}
	return toLeadResponse(lead), nil
}

// Delete elimina un lead. Un lead pagado no se elimina: ya tiene venta y póliza.
func (uc *LeadUseCase) Delete(ctx context.Context, actor Actor, id string) error {
	lead, err := uc.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if lead.Status == entity.LeadStatusPaid {
		return fmt.Errorf("%w: no se puede eliminar un lead pagado", domain.ErrConflict)
	}
	if err := uc.leads.Delete(ctx, id); err != nil {
		return err
	}
	if err := uc.changes.Audit(ctx, nil, actor, "lead.deleted", "lead", id, map[string]any{"name": lead.Name}); err != nil {
		return err
	}
	uc.changes.Publish(ctx, "leads", ports.EventDelete, id)
	return nil
}

func (uc *LeadUseCase) load(ctx context.Context, actor Actor, id string) (*entity.Lead, error) {
	lead, err := uc.leads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil || (actor.IsSeller() && lead.SellerID != actor.UserID) {
		return nil, domain.ErrNotFound
	}
	return lead, nil
}

func (uc *LeadUseCase) checkProduct(ctx context.Context, productID string) error {
	if productID == "" {
		return nil
	}
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: producto %s no existe", domain.ErrInvalidInput, productID)
	}
	return nil
}

func (uc *LeadUseCase) checkSeller(ctx context.Context, sellerID string) error {
	if sellerID == "" {
		return nil
	}
	u, err := uc.users.GetByID(ctx, sellerID)
	if err != nil {
		return err
	}
	if u == nil || u.Status != entity.UserStatusActive {
		return fmt.Errorf("%w: vendedor %s no existe o no está activo", domain.ErrInvalidInput, sellerID)
	}
	return nil
}

func toLeadResponse(l *entity.Lead) *dto.LeadResponse {
	return &dto.LeadResponse{
		ID:             l.ID,
		Name:           l.Name,
		Email:          l.Email,
		Phone:          l.Phone,
		Document:       l.Document,
		Source:         l.Source,
		Status:         string(l.Status),
		StatusBadge:    display.LeadStatus(l.Status),
		ProductID:      l.ProductID,
		SellerID:       l.SellerID,
		EstimatedValue: l.EstimatedValue,
		Notes:          l.Notes,
		LostReason:     l.LostReason,
		ClosedAt:       l.ClosedAt,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}
