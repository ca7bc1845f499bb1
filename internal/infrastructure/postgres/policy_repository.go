package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

var _ repository.PolicyRepository = (*PolicyRepo)(nil)

const policyColumns = `id, number, sale_id, client_id, product_id, status, premium, start_date, end_date,
	welcome_kit_key, welcome_kit_sent, created_at, updated_at`

// PolicyRepo implementación de PolicyRepository (usable con pool o tx).
type PolicyRepo struct {
	q Querier
}

// NewPolicyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPolicyRepository(q Querier) *PolicyRepo {
	return &PolicyRepo{q: q}
}

func scanPolicy(row rowScanner) (*entity.Policy, error) {
	var p entity.Policy
	err := row.Scan(&p.ID, &p.Number, &p.SaleID, &p.ClientID, &p.ProductID, &p.Status, &p.Premium,
		&p.StartDate, &p.EndDate, &p.WelcomeKitKey, &p.WelcomeKitSent, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste una póliza. Una segunda póliza para la misma venta
// (o un número repetido) devuelve ErrDuplicate.
func (r *PolicyRepo) Create(ctx context.Context, p *entity.Policy) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO policies (`+policyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.Number, p.SaleID, p.ClientID, p.ProductID, p.Status, p.Premium,
		p.StartDate, p.EndDate, p.WelcomeKitKey, p.WelcomeKitSent, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert policy: %w", err)
	}
	return nil
}

// GetByID obtiene una póliza por ID (nil si no existe).
func (r *PolicyRepo) GetByID(ctx context.Context, id string) (*entity.Policy, error) {
	return r.getOne(ctx, `id = $1`, id)
}

// GetBySaleID obtiene la póliza de una venta (nil si no existe).
func (r *PolicyRepo) GetBySaleID(ctx context.Context, saleID string) (*entity.Policy, error) {
	return r.getOne(ctx, `sale_id = $1`, saleID)
}

func (r *PolicyRepo) getOne(ctx context.Context, where string, arg any) (*entity.Policy, error) {
	p, err := scanPolicy(r.q.QueryRow(ctx, `SELECT `+policyColumns+` FROM policies WHERE `+where, arg))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get policy: %w", err)
	}
	return p, nil
}

// Update actualiza estado y datos del kit de bienvenida.
func (r *PolicyRepo) Update(ctx context.Context, p *entity.Policy) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE policies SET status = $2, premium = $3, start_date = $4, end_date = $5,
		       welcome_kit_key = $6, welcome_kit_sent = $7, updated_at = $8
		WHERE id = $1`,
		p.ID, p.Status, p.Premium, p.StartDate, p.EndDate, p.WelcomeKitKey, p.WelcomeKitSent, p.UpdatedAt)
	return mustAffect(tag, err, "update policy", nil)
}

// List pólizas más recientes primero, opcionalmente por estado.
func (r *PolicyRepo) List(ctx context.Context, status entity.PolicyStatus, limit int) ([]*entity.Policy, error) {
	var c conds
	if status != "" {
		c.add("status = $%d", string(status))
	}
	query := `SELECT ` + policyColumns + ` FROM policies` + c.where() + ` ORDER BY created_at DESC` + c.limit(limit)
	rows, err := r.q.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	return collect(rows, scanPolicy)
}
