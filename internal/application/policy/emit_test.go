package policy_test

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/seguros-api/internal/application/policy"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/infrastructure/memory"
)

func seed(t *testing.T, store *memory.Store, saleStatus entity.SaleStatus) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "prod-1", Name: "Vida Plus", Active: true}))
	require.NoError(t, store.Sales().Create(ctx, &entity.Sale{
		ID: "sale-1", LeadID: "lead-1", ClientID: "cli-1", ProductID: "prod-1",
		Amount: decimal.RequireFromString("850000"), Status: saleStatus, CreatedAt: time.Now(),
	}))
}

func TestEmit_CreaPolizaConVigenciaDeUnAnio(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, entity.SaleStatusPaid)
	uc := policy.NewEmitPolicyUseCase(store.Sales(), store.Products(), store.Policies(), nil, zerolog.Nop())

	out, err := uc.Emit(context.Background(), "sale-1")
	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.Regexp(t, regexp.MustCompile(`^POL-\d{8}-[A-Z2-9]{6}$`), out.PolicyNumber)

	p, err := store.Policies().GetByID(context.Background(), out.PolicyID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, entity.PolicyStatusActive, p.Status)
	assert.Equal(t, "cli-1", p.ClientID)
	assert.True(t, p.Premium.Equal(decimal.RequireFromString("850000")))
	assert.Equal(t, p.StartDate.AddDate(1, 0, 0), p.EndDate)
}

func TestEmit_IdempotentePorVenta(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, entity.SaleStatusPaid)
	uc := policy.NewEmitPolicyUseCase(store.Sales(), store.Products(), store.Policies(), nil, zerolog.Nop())

	first, err := uc.Emit(context.Background(), "sale-1")
	require.NoError(t, err)
	second, err := uc.Emit(context.Background(), "sale-1")
	require.NoError(t, err)

	assert.Equal(t, first.PolicyID, second.PolicyID)
	assert.Equal(t, first.PolicyNumber, second.PolicyNumber)
	assert.False(t, second.Created)

	all, err := store.Policies().List(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEmit_Errores(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, entity.SaleStatusCancelled)
	uc := policy.NewEmitPolicyUseCase(store.Sales(), store.Products(), store.Policies(), nil, zerolog.Nop())

	_, err := uc.Emit(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)

	_, err = uc.Emit(context.Background(), "sale-1")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.Handle(context.Background(), json.RawMessage(`no-json`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEmit_HandleDevuelveJSON(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, entity.SaleStatusPaid)
	uc := policy.NewEmitPolicyUseCase(store.Sales(), store.Products(), store.Policies(), nil, zerolog.Nop())

	raw, err := uc.Handle(context.Background(), json.RawMessage(`{"sale_id":"sale-1"}`))
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.NotEmpty(t, out["policy_id"])
	assert.NotEmpty(t, out["policy_number"])
}

func TestEmit_VentaNoPagadaNoEmite(t *testing.T) {
	for _, status := range []entity.SaleStatus{entity.SaleStatusPending, entity.SaleStatusCancelled, entity.SaleStatusRefunded} {
		t.Run(string(status), func(t *testing.T) {
			store := memory.NewStore()
			seed(t, store, status)
			uc := policy.NewEmitPolicyUseCase(store.Sales(), store.Products(), store.Policies(), nil, zerolog.Nop())

			_, err := uc.Emit(context.Background(), "sale-1")
			assert.ErrorIs(t, err, domain.ErrConflict)

			p, err := store.Policies().GetBySaleID(context.Background(), "sale-1")
			require.NoError(t, err)
			assert.Nil(t, p)
		})
	}
}
