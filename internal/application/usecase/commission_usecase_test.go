package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/usecase"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
)

func seedCommission(t *testing.T, f *fixture, id, sellerID string, status entity.CommissionStatus) {
	t.Helper()
	require.NoError(t, f.store.Commissions().Create(context.Background(), &entity.Commission{
		ID: id, SaleID: "sale-" + id, SellerID: sellerID, Amount: decimal.NewFromInt(150), Rate: decimal.NewFromInt(10),
		Status: status, CreatedAt: time.Now().UTC(),
	}))
}

func TestCommission_FlujoAprobarPagar(t *testing.T) {
	f := newFixture(t)
	seedCommission(t, f, "c1", "seller-1", entity.CommissionStatusPending)
	uc := usecase.NewCommissionUseCase(f.store.Commissions(), f.store.Users(), f.store.Notifications(), f.changes)
	ctx := context.Background()

	_, err := uc.Pay(ctx, admin, "c1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "no se paga sin aprobar")

	out, err := uc.Approve(ctx, admin, "c1")
	require.NoError(t, err)
	assert.Equal(t, "approved", out.Status)
	assert.Equal(t, "admin-1", out.ApprovedBy)
	assert.NotNil(t, out.ApprovedAt)

	out, err = uc.Pay(ctx, admin, "c1")
	require.NoError(t, err)
	assert.Equal(t, "paid", out.Status)
	assert.NotNil(t, out.PaidAt)

	_, err = uc.Cancel(ctx, admin, "c1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	notifs, err := f.store.Notifications().ListByUser(ctx, "seller-1", false, 10)
	require.NoError(t, err)
	assert.Len(t, notifs, 2)
	assert.Len(t, f.audits(t, "commission.approved"), 1)
	assert.Len(t, f.audits(t, "commission.paid"), 1)

	_, err = uc.Approve(ctx, admin, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCommissionList_SellerSoloVeLasSuyasYBuscaPorVendedor(t *testing.T) {
	f := newFixture(t)
	seedCommission(t, f, "c1", "seller-1", entity.CommissionStatusPending)
	seedCommission(t, f, "c2", "seller-2", entity.CommissionStatusApproved)
	uc := usecase.NewCommissionUseCase(f.store.Commissions(), f.store.Users(), f.store.Notifications(), f.changes)
	ctx := context.Background()

	out, err := uc.List(ctx, seller1, dto.CommissionListQuery{})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "c1", out.Items[0].ID)
	assert.Equal(t, "Sofía Pérez", out.Items[0].SellerName)

	out, err = uc.List(ctx, admin, dto.CommissionListQuery{Search: "sofia"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "seller-1", out.Items[0].SellerID)

	out, err = uc.List(ctx, admin, dto.CommissionListQuery{Status: "approved"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "c2", out.Items[0].ID)
}
