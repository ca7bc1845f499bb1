package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/seguros-api/internal/application/automation"
	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/display"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/filter"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// SaleUseCase casos de uso de ventas y sus pagos.
type SaleUseCase struct {
	sales    repository.SaleRepository
	payments repository.PaymentRepository
	leads    repository.LeadRepository
	clients  repository.ClientRepository
	products repository.ProductRepository
	tx       ports.TxRunner
	closure  *automation.LeadClosure
	recovery RecoveryTracker // opcional
	changes  *Changes
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(
	sales repository.SaleRepository,
	payments repository.PaymentRepository,
	leads repository.LeadRepository,
	clients repository.ClientRepository,
	products repository.ProductRepository,
	tx ports.TxRunner,
	closure *automation.LeadClosure,
	changes *Changes,
) *SaleUseCase {
	return &SaleUseCase{
		sales: sales, payments: payments, leads: leads, clients: clients, products: products,
		tx: tx, closure: closure, changes: changes,
	}
}

// WithRecoveryTracker conecta el conteo de recuperados de campañas.
func (uc *SaleUseCase) WithRecoveryTracker(t RecoveryTracker) *SaleUseCase {
	uc.recovery = t
	return uc
}

// Create registra una venta pendiente de pago. Si Amount es cero se usa el
// precio del producto; el vendedor por defecto es el del lead.
func (uc *SaleUseCase) Create(ctx context.Context, actor Actor, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	lead, err := uc.leads.GetByID(ctx, in.LeadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, fmt.Errorf("%w: lead %s no existe", domain.ErrInvalidInput, in.LeadID)
	}
	switch lead.Status {
	case entity.LeadStatusLost:
		return nil, fmt.Errorf("%w: el lead está perdido", domain.ErrConflict)
	case entity.LeadStatusPaid:
		return nil, fmt.Errorf("%w: el lead ya está cerrado con una venta pagada", domain.ErrConflict)
	}
	client, err := uc.clients.GetByID(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("%w: cliente %s no existe", domain.ErrInvalidInput, in.ClientID)
	}
	product, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.Active {
		return nil, fmt.Errorf("%w: producto %s no existe o está inactivo", domain.ErrInvalidInput, in.ProductID)
	}

	amount := in.Amount
	if amount.IsZero() {
		amount = product.Price
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount debe ser mayor que cero", domain.ErrInvalidInput)
	}
	sellerID := in.SellerID
	if sellerID == "" {
		sellerID = lead.SellerID
	}
	if sellerID == "" && actor.IsSeller() {
		sellerID = actor.UserID
	}

	now := time.Now().UTC()
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		LeadID:        lead.ID,
		ClientID:      client.ID,
		ProductID:     product.ID,
		SellerID:      sellerID,
		Amount:        amount,
		Status:        entity.SaleStatusPending,
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.sales.Create(ctx, sale); err != nil {
		return nil, err
	}
	if err := uc.changes.Audit(ctx, nil, actor, "sale.created", "sale", sale.ID, map[string]any{
		"lead_id": sale.LeadID, "amount": sale.Amount,
	}); err != nil {
		return nil, err
	}
	uc.changes.Publish(ctx, "sales", ports.EventInsert, sale.ID)
	return toSaleResponse(sale, client.Name), nil
}

// GetByID obtiene una venta por ID.
func (uc *SaleUseCase) GetByID(ctx context.Context, actor Actor, id string) (*dto.SaleResponse, error) {
	sale, err := uc.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil || (actor.IsSeller() && sale.SellerID != actor.UserID) {
		return nil, nil
	}
	return toSaleResponse(sale, uc.clientName(ctx, sale.ClientID, nil)), nil
}

// List lista ventas; la búsqueda incluye el nombre del titular.
func (uc *SaleUseCase) List(ctx context.Context, actor Actor, q dto.SaleListQuery) (*dto.SaleListResponse, error) {
	q.DefaultPage()
	if actor.IsSeller() {
		q.SellerID = actor.UserID
	}
	f := repository.SaleListFilter{SellerID: q.SellerID, Limit: listScanLimit}
	if s := entity.SaleStatus(q.Status); display.SaleStatus(s).Label != display.FallbackLabel {
		f.Status = s
	}
	list, err := uc.sales.List(ctx, f)
	if err != nil {
		return nil, err
	}
	names := map[string]string{}
	matched := filter.Apply(list, func(s *entity.Sale) bool {
		return filter.MatchSale(s, uc.clientName(ctx, s.ClientID, names), filter.SaleFilter{Search: q.Search, Status: q.Status})
	})
	page := filter.Page(matched, q.Limit, q.Offset)
	items := make([]dto.SaleResponse, 0, len(page))
	for _, s := range page {
		items = append(items, *toSaleResponse(s, names[s.ClientID]))
	}
	return &dto.SaleListResponse{
		Items: items,
		Page:  pageResponse(q.Limit, q.Offset, len(matched), len(list)),
	}, nil
}

// MarkPaid confirma el pago de una venta pendiente. En una transacción:
//  1. venta → paid
//  2. Payment por el monto total
//  3. Commission pending a la tasa del producto (si hay vendedor y tasa > 0)
//  4. lead → paid, lo que encola el cierre (póliza + kit de bienvenida)
func (uc *SaleUseCase) MarkPaid(ctx context.Context, actor Actor, id string, in dto.MarkSalePaidRequest) (*dto.MarkSalePaidResponse, error) {
	var (
		product    *entity.Product
		sale       *entity.Sale
		payment    *entity.Payment
		commission *entity.Commission
		leadPaid   bool
	)
	err := uc.tx.RunInTx(ctx, func(r ports.TxRepos) error {
		var err error
		sale, err = r.Sales.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if sale.Status != entity.SaleStatusPending {
			return fmt.Errorf("%w: la venta está %s", domain.ErrConflict, sale.Status)
		}
		if product, err = uc.products.GetByID(ctx, sale.ProductID); err != nil {
			return err
		}

		now := time.Now().UTC()
		method := in.Method
		if method == "" {
			method = sale.PaymentMethod
		}
		sale.Status = entity.SaleStatusPaid
		sale.PaymentMethod = method
		sale.PaidAt = &now
		sale.UpdatedAt = now
		if err := r.Sales.Update(ctx, sale); err != nil {
			return err
		}

		payment = &entity.Payment{
			ID:          uuid.New().String(),
			SaleID:      sale.ID,
			Amount:      sale.Amount,
			Method:      method,
			Status:      entity.PaymentStatusPaid,
			ExternalRef: in.ExternalRef,
			PaidAt:      &now,
			CreatedAt:   now,
		}
		if err := r.Payments.Create(ctx, payment); err != nil {
			return err
		}

		if product != nil && sale.SellerID != "" && product.CommissionRate.IsPositive() {
			existing, err := r.Commissions.GetBySaleID(ctx, sale.ID)
			if err != nil {
				return err
			}
			if existing == nil {
				commission = &entity.Commission{
					ID:        uuid.New().String(),
					SaleID:    sale.ID,
					SellerID:  sale.SellerID,
					Amount:    CommissionAmount(sale.Amount, product.CommissionRate),
					Rate:      product.CommissionRate,
					Status:    entity.CommissionStatusPending,
					CreatedAt: now,
					UpdatedAt: now,
				}
				if err := r.Commissions.Create(ctx, commission); err != nil {
					return err
				}
			}
		}

		lead, err := r.Leads.GetByID(ctx, sale.LeadID)
		if err != nil {
			return err
		}
		if lead != nil && lead.Status.CanTransitionTo(entity.LeadStatusPaid) {
			from := lead.Status
			if err := applyLeadTransition(lead, entity.LeadStatusPaid, "", now); err != nil {
				return err
			}
			if err := r.Leads.Update(ctx, lead); err != nil {
				return err
			}
			if _, err := uc.closure.WithJobs(r.Jobs).OnStatusChanged(ctx, lead, from, entity.LeadStatusPaid, sale.ID, actor.UserID); err != nil {
				return err
			}
			leadPaid = true
		}

		return uc.changes.Audit(ctx, r.AuditLogs, actor, "sale.paid", "sale", sale.ID, map[string]any{
			"payment_id": payment.ID, "amount": sale.Amount, "method": method, "lead_paid": leadPaid,
		})
	})
	if err != nil {
		return nil, err
	}

	uc.changes.Publish(ctx, "sales", ports.EventUpdate, sale.ID)
	uc.changes.Publish(ctx, "payments", ports.EventInsert, payment.ID)
	if commission != nil {
		uc.changes.Publish(ctx, "commissions", ports.EventInsert, commission.ID)
	}
	if leadPaid {
		uc.changes.Publish(ctx, "leads", ports.EventUpdate, sale.LeadID)
		if uc.recovery != nil {
			uc.recovery.TrackRecovery(ctx, sale.LeadID)
		}
	}

	out := &dto.MarkSalePaidResponse{
		Sale:    *toSaleResponse(sale, uc.clientName(ctx, sale.ClientID, nil)),
		Payment: *toPaymentResponse(payment),
	}
	if commission != nil {
		out.Commission = toCommissionResponse(commission, "")
	}
	return out, nil
}

// Cancel anula una venta pendiente o pagada y cancela su comisión si aún no se pagó.
func (uc *SaleUseCase) Cancel(ctx context.Context, actor Actor, id string) (*dto.SaleResponse, error) {
	var sale *entity.Sale
	err := uc.tx.RunInTx(ctx, func(r ports.TxRepos) error {
		var err error
		sale, err = r.Sales.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if sale.Status != entity.SaleStatusPending && sale.Status != entity.SaleStatusPaid {
			return fmt.Errorf("%w: la venta está %s", domain.ErrConflict, sale.Status)
		}
		now := time.Now().UTC()
		sale.Status = entity.SaleStatusCancelled
		sale.UpdatedAt = now
		if err := r.Sales.Update(ctx, sale); err != nil {
			return err
		}
		c, err := r.Commissions.GetBySaleID(ctx, sale.ID)
		if err != nil {
			return err
		}
		if c != nil && c.Status.CanTransitionTo(entity.CommissionStatusCancelled) {
			c.Status = entity.CommissionStatusCancelled
			c.UpdatedAt = now
			if err := r.Commissions.Update(ctx, c); err != nil {
				return err
			}
		}
		return uc.changes.Audit(ctx, r.AuditLogs, actor, "sale.cancelled", "sale", sale.ID, nil)
	})
	if err != nil {
		return nil, err
	}
	uc.changes.Publish(ctx, "sales", ports.EventUpdate, sale.ID)
	return toSaleResponse(sale, uc.clientName(ctx, sale.ClientID, nil)), nil
}

// ListPayments lista los pagos de una venta.
func (uc *SaleUseCase) ListPayments(ctx context.Context, saleID string) ([]dto.PaymentResponse, error) {
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.payments.ListBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toPaymentResponse(p))
	}
	return out, nil
}

// RecordPayment registra un intento de cobro (p. ej. un pago fallido o un
// reembolso). No cambia el estado de la venta: eso lo hace MarkPaid.
func (uc *SaleUseCase) RecordPayment(ctx context.Context, actor Actor, saleID string, in dto.RecordPaymentRequest) (*dto.PaymentResponse, error) {
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	amount := in.Amount
	if amount.IsZero() {
		amount = sale.Amount
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount no puede ser negativo", domain.ErrInvalidInput)
	}
	now := time.Now().UTC()
	p := &entity.Payment{
		ID:          uuid.New().String(),
		SaleID:      sale.ID,
		Amount:      amount,
		Method:      in.Method,
		Status:      entity.PaymentStatus(in.Status),
		ExternalRef: in.ExternalRef,
		CreatedAt:   now,
	}
	if p.Status == entity.PaymentStatusPaid {
		p.PaidAt = &now
	}
	if err := uc.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	if err := uc.changes.Audit(ctx, nil, actor, "payment.recorded", "sale", sale.ID, map[string]any{
		"payment_id": p.ID, "status": p.Status, "amount": p.Amount,
	}); err != nil {
		return nil, err
	}
	uc.changes.Publish(ctx, "payments", ports.EventInsert, p.ID)
	return toPaymentResponse(p), nil
}

// CommissionAmount monto de comisión: amount * rate / 100, a 2 decimales.
func CommissionAmount(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
}

// clientName resuelve el nombre del titular; cache evita repetir lecturas en listados.
func (uc *SaleUseCase) clientName(ctx context.Context, clientID string, cache map[string]string) string {
	if cache != nil {
		if n, ok := cache[clientID]; ok {
			return n
		}
	}
	name := ""
	if c, err := uc.clients.GetByID(ctx, clientID); err == nil && c != nil {
		name = c.Name
	}
	if cache != nil {
		cache[clientID] = name
	}
	return name
}

func toSaleResponse(s *entity.Sale, clientName string) *dto.SaleResponse {
	return &dto.SaleResponse{
		ID:            s.ID,
		LeadID:        s.LeadID,
		ClientID:      s.ClientID,
		ClientName:    clientName,
		ProductID:     s.ProductID,
		SellerID:      s.SellerID,
		Amount:        s.Amount,
		Status:        string(s.Status),
		StatusBadge:   display.SaleStatus(s.Status),
		PaymentMethod: s.PaymentMethod,
		PaidAt:        s.PaidAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func toPaymentResponse(p *entity.Payment) *dto.PaymentResponse {
	return &dto.PaymentResponse{
		ID:          p.ID,
		SaleID:      p.SaleID,
		Amount:      p.Amount,
		Method:      p.Method,
		Status:      string(p.Status),
		StatusBadge: display.PaymentStatus(p.Status),
		ExternalRef: p.ExternalRef,
		PaidAt:      p.PaidAt,
		CreatedAt:   p.CreatedAt,
	}
}
