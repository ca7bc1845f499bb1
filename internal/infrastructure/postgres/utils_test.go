package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/seguros-api/internal/domain"
)

func TestConds_NumeraPlaceholders(t *testing.T) {
	var c conds
	assert.Empty(t, c.where())
	c.add("status = $%d", "new")
	c.add("seller_id = $%d", "u1")
	assert.Equal(t, " WHERE status = $1 AND seller_id = $2", c.where())
	assert.Equal(t, " LIMIT $3", c.limit(50))
	assert.Equal(t, []any{"new", "u1", 50}, c.args)
	assert.Empty(t, c.limit(0))
}

func TestMustAffect(t *testing.T) {
	assert.NoError(t, mustAffect(pgconn.NewCommandTag("UPDATE 1"), nil, "op", nil))
	assert.ErrorIs(t, mustAffect(pgconn.NewCommandTag("UPDATE 0"), nil, "op", nil), domain.ErrNotFound)
	assert.ErrorIs(t, mustAffect(pgconn.NewCommandTag("UPDATE 0"), nil, "op", domain.ErrUserNotFound), domain.ErrUserNotFound)

	boom := errors.New("boom")
	assert.ErrorIs(t, mustAffect(pgconn.CommandTag{}, boom, "op", nil), boom)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.Nil(t, nullString(""))
	assert.Equal(t, "x", *nullString("x"))
	assert.Equal(t, "{}", jsonOrEmpty(nil))
}
