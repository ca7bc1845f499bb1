package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/seguros-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// nullString convierte "" en NULL para columnas opcionales con FK.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// noRows traduce pgx.ErrNoRows al contrato "nil, nil" de los GetBy*.
func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// mustAffect devuelve notFound si el UPDATE/DELETE no tocó filas.
func mustAffect(tag pgconn.CommandTag, err error, op string, notFound error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		if notFound == nil {
			notFound = domain.ErrNotFound
		}
		return notFound
	}
	return nil
}

// jsonOrEmpty evita insertar NULL en columnas JSONB NOT NULL.
func jsonOrEmpty(b []byte) string {
	if len(b) == 0 {
		return "{}"
	}
	return string(b)
}

// conds arma cláusulas WHERE con placeholders numerados.
type conds struct {
	parts []string
	args  []any
}

func (c *conds) add(expr string, arg any) {
	c.args = append(c.args, arg)
	c.parts = append(c.parts, fmt.Sprintf(expr, len(c.args)))
}

func (c *conds) where() string {
	if len(c.parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.parts, " AND ")
}

// limit agrega LIMIT si n > 0.
func (c *conds) limit(n int) string {
	if n <= 0 {
		return ""
	}
	c.args = append(c.args, n)
	return fmt.Sprintf(" LIMIT $%d", len(c.args))
}
