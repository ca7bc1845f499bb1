package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

var _ repository.CommissionRepository = (*CommissionRepo)(nil)

const commissionColumns = `id, sale_id, seller_id, amount, rate, status, approved_by, approved_at, paid_at, created_at, updated_at`

// CommissionRepo implementación de CommissionRepository (usable con pool o tx).
type CommissionRepo struct {
	q Querier
}

// NewCommissionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCommissionRepository(q Querier) *CommissionRepo {
	return &CommissionRepo{q: q}
}

func scanCommission(row rowScanner) (*entity.Commission, error) {
	var c entity.Commission
	err := row.Scan(&c.ID, &c.SaleID, &c.SellerID, &c.Amount, &c.Rate, &c.Status,
		&c.ApprovedBy, &c.ApprovedAt, &c.PaidAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste una comisión; una por venta.
func (r *CommissionRepo) Create(ctx context.Context, c *entity.Commission) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO commissions (`+commissionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.SaleID, c.SellerID, c.Amount, c.Rate, c.Status,
		c.ApprovedBy, c.ApprovedAt, c.PaidAt, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert commission: %w", err)
	}
	return nil
}

// GetByID obtiene una comisión por ID (nil si no existe).
func (r *CommissionRepo) GetByID(ctx context.Context, id string) (*entity.Commission, error) {
	return r.getOne(ctx, `id = $1`, id)
}

// GetBySaleID obtiene la comisión de una venta (nil si no existe).
func (r *CommissionRepo) GetBySaleID(ctx context.Context, saleID string) (*entity.Commission, error) {
	return r.getOne(ctx, `sale_id = $1`, saleID)
}

func (r *CommissionRepo) getOne(ctx context.Context, where string, arg any) (*entity.Commission, error) {
	c, err := scanCommission(r.q.QueryRow(ctx, `SELECT `+commissionColumns+` FROM commissions WHERE `+where, arg))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get commission: %w", err)
	}
	return c, nil
}

// Update actualiza estado y aprobación.
func (r *CommissionRepo) Update(ctx context.Context, c *entity.Commission) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE commissions SET amount = $2, rate = $3, status = $4, approved_by = $5,
		       approved_at = $6, paid_at = $7, updated_at = $8
		WHERE id = $1`,
		c.ID, c.Amount, c.Rate, c.Status, c.ApprovedBy, c.ApprovedAt, c.PaidAt, c.UpdatedAt)
	return mustAffect(tag, err, "update commission", nil)
}

// List aplica los filtros SQL; más recientes primero.
func (r *CommissionRepo) List(ctx context.Context, f repository.CommissionListFilter) ([]*entity.Commission, error) {
	var c conds
	if f.Status != "" {
		c.add("status = $%d", string(f.Status))
	}
	if f.SellerID != "" {
		c.add("seller_id = $%d", f.SellerID)
	}
	query := `SELECT ` + commissionColumns + ` FROM commissions` + c.where() + ` ORDER BY created_at DESC` + c.limit(f.Limit)
	rows, err := r.q.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("list commissions: %w", err)
	}
	return collect(rows, scanCommission)
}
