package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

const clientColumns = `id, name, email, phone, document, birth_date, address, city, state,
	COALESCE(lead_id, ''), created_at, updated_at`

// ClientRepo implementación de ClientRepository (usable con pool o tx).
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

func scanClient(row rowScanner) (*entity.Client, error) {
	var c entity.Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Document, &c.BirthDate,
		&c.Address, &c.City, &c.State, &c.LeadID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un cliente. El documento es único.
func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO clients (id, name, email, phone, document, birth_date, address, city, state, lead_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.Name, c.Email, c.Phone, c.Document, c.BirthDate, c.Address, c.City, c.State,
		nullString(c.LeadID), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID (nil si no existe).
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByDocument obtiene un cliente por documento (nil si no existe).
func (r *ClientRepo) GetByDocument(ctx context.Context, document string) (*entity.Client, error) {
	return r.getOne(ctx, `WHERE document = $1`, document)
}

func (r *ClientRepo) getOne(ctx context.Context, where string, arg any) (*entity.Client, error) {
	c, err := scanClient(r.q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients `+where, arg))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// Update actualiza un cliente.
func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE clients SET name = $2, email = $3, phone = $4, document = $5, birth_date = $6,
		       address = $7, city = $8, state = $9, lead_id = $10, updated_at = $11
		WHERE id = $1`,
		c.ID, c.Name, c.Email, c.Phone, c.Document, c.BirthDate, c.Address, c.City, c.State,
		nullString(c.LeadID), c.UpdatedAt)
	if err != nil && isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return mustAffect(tag, err, "update client", nil)
}

// List lista clientes por nombre.
func (r *ClientRepo) List(ctx context.Context, limit int) ([]*entity.Client, error) {
	var c conds
	rows, err := r.q.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name`+c.limit(limit), c.args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return collect(rows, scanClient)
}
