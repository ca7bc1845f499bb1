package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

var _ repository.LeadRepository = (*LeadRepo)(nil)

const leadColumns = `id, name, email, phone, document, source, status,
	COALESCE(product_id, ''), COALESCE(seller_id, ''), estimated_value, notes, lost_reason,
	closed_at, created_at, updated_at`

// LeadRepo implementación de LeadRepository (usable con pool o tx).
type LeadRepo struct {
	q Querier
}

// NewLeadRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLeadRepository(q Querier) *LeadRepo {
	return &LeadRepo{q: q}
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var l entity.Lead
	err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Document, &l.Source, &l.Status,
		&l.ProductID, &l.SellerID, &l.EstimatedValue, &l.Notes, &l.LostReason,
		&l.ClosedAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste un lead.
func (r *LeadRepo) Create(ctx context.Context, l *entity.Lead) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO leads (id, name, email, phone, document, source, status, product_id, seller_id,
		                   estimated_value, notes, lost_reason, closed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		l.ID, l.Name, l.Email, l.Phone, l.Document, l.Source, l.Status,
		nullString(l.ProductID), nullString(l.SellerID), l.EstimatedValue, l.Notes, l.LostReason,
		l.ClosedAt, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// GetByID obtiene un lead por ID (nil si no existe).
func (r *LeadRepo) GetByID(ctx context.Context, id string) (*entity.Lead, error) {
	l, err := scanLead(r.q.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return l, nil
}

// Update reescribe el lead completo.
func (r *LeadRepo) Update(ctx context.Context, l *entity.Lead) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE leads SET name = $2, email = $3, phone = $4, document = $5, source = $6, status = $7,
		       product_id = $8, seller_id = $9, estimated_value = $10, notes = $11, lost_reason = $12,
		       closed_at = $13, updated_at = $14
		WHERE id = $1`,
		l.ID, l.Name, l.Email, l.Phone, l.Document, l.Source, l.Status,
		nullString(l.ProductID), nullString(l.SellerID), l.EstimatedValue, l.Notes, l.LostReason,
		l.ClosedAt, l.UpdatedAt)
	return mustAffect(tag, err, "update lead", nil)
}

// Delete elimina un lead.
func (r *LeadRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	return mustAffect(tag, err, "delete lead", nil)
}

// List aplica los filtros SQL; más recientes primero.
func (r *LeadRepo) List(ctx context.Context, f repository.LeadListFilter) ([]*entity.Lead, error) {
	var c conds
	if f.Status != "" {
		c.add("status = $%d", string(f.Status))
	}
	if f.SellerID != "" {
		c.add("seller_id = $%d", f.SellerID)
	}
	query := `SELECT ` + leadColumns + ` FROM leads` + c.where() + ` ORDER BY created_at DESC` + c.limit(f.Limit)
	rows, err := r.q.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return collect(rows, scanLead)
}
