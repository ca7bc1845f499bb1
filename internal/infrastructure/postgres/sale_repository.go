package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

var (
	_ repository.SaleRepository    = (*SaleRepo)(nil)
	_ repository.PaymentRepository = (*PaymentRepo)(nil)
)

const saleColumns = `id, COALESCE(lead_id, ''), client_id, product_id, COALESCE(seller_id, ''),
	amount, status, payment_method, paid_at, created_at, updated_at`

// SaleRepo implementación de SaleRepository (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

func scanSale(row rowScanner) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(&s.ID, &s.LeadID, &s.ClientID, &s.ProductID, &s.SellerID,
		&s.Amount, &s.Status, &s.PaymentMethod, &s.PaidAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste una venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales (id, lead_id, client_id, product_id, seller_id, amount, status, payment_method, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, nullString(s.LeadID), s.ClientID, s.ProductID, nullString(s.SellerID),
		s.Amount, s.Status, s.PaymentMethod, s.PaidAt, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// GetByID obtiene una venta por ID (nil si no existe).
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// GetPaidByLeadID devuelve la última venta pagada del lead.
func (r *SaleRepo) GetPaidByLeadID(ctx context.Context, leadID string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `
		SELECT `+saleColumns+` FROM sales
		WHERE lead_id = $1 AND status = 'paid'
		ORDER BY paid_at DESC NULLS LAST, created_at DESC
		LIMIT 1`, leadID))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get paid sale by lead: %w", err)
	}
	return s, nil
}

// Update actualiza estado, monto y datos de pago.
func (r *SaleRepo) Update(ctx context.Context, s *entity.Sale) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE sales SET lead_id = $2, client_id = $3, product_id = $4, seller_id = $5, amount = $6,
		       status = $7, payment_method = $8, paid_at = $9, updated_at = $10
		WHERE id = $1`,
		s.ID, nullString(s.LeadID), s.ClientID, s.ProductID, nullString(s.SellerID),
		s.Amount, s.Status, s.PaymentMethod, s.PaidAt, s.UpdatedAt)
	return mustAffect(tag, err, "update sale", nil)
}

// List aplica los filtros SQL; más recientes primero.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleListFilter) ([]*entity.Sale, error) {
	var c conds
	if f.Status != "" {
		c.add("status = $%d", string(f.Status))
	}
	if f.SellerID != "" {
		c.add("seller_id = $%d", f.SellerID)
	}
	query := `SELECT ` + saleColumns + ` FROM sales` + c.where() + ` ORDER BY created_at DESC` + c.limit(f.Limit)
	rows, err := r.q.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return collect(rows, scanSale)
}

// PaymentRepo cobros por venta.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador.
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

// Create persiste un cobro.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO payments (id, sale_id, amount, method, status, external_ref, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.SaleID, p.Amount, p.Method, p.Status, p.ExternalRef, p.PaidAt, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// ListBySale cobros de la venta en orden cronológico.
func (r *PaymentRepo) ListBySale(ctx context.Context, saleID string) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, amount, method, status, external_ref, paid_at, created_at
		FROM payments WHERE sale_id = $1 ORDER BY created_at`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return collect(rows, func(row rowScanner) (*entity.Payment, error) {
		var p entity.Payment
		if err := row.Scan(&p.ID, &p.SaleID, &p.Amount, &p.Method, &p.Status, &p.ExternalRef, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		return &p, nil
	})
}
