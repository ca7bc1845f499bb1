package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/usecase"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
)

func TestCommissionAmount(t *testing.T) {
	assert.Equal(t, "100", usecase.CommissionAmount(decimal.NewFromInt(1000), decimal.NewFromInt(10)).String())
	assert.Equal(t, "12.35", usecase.CommissionAmount(decimal.RequireFromString("123.45"), decimal.NewFromInt(10)).String())
	assert.True(t, usecase.CommissionAmount(decimal.NewFromInt(500), decimal.Zero).IsZero())
}

func TestSaleCreate_UsaPrecioDelProductoYVendedorDelLead(t *testing.T) {
	f := newFixture(t)
	f.seedLead(t, "l1", "Ana", entity.LeadStatusNegotiation, "seller-1")
	uc := f.saleUC()

	out, err := uc.Create(context.Background(), admin, dto.CreateSaleRequest{LeadID: "l1", ClientID: "cli-1", ProductID: "prod-1"})
	require.NoError(t, err)
	assert.True(t, out.Amount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "seller-1", out.SellerID)
	assert.Equal(t, "pending", out.Status)
	assert.Equal(t, "Ana Gómez", out.ClientName)
	assert.Len(t, f.audits(t, "sale.created"), 1)
}

func TestSaleCreate_ValidaReferencias(t *testing.T) {
	f := newFixture(t)
	f.seedLead(t, "l1", "Ana", entity.LeadStatusNegotiation, "seller-1")
	f.seedLead(t, "l2", "Luis", entity.LeadStatusLost, "seller-1")
	uc := f.saleUC()
	ctx := context.Background()

	_, err := uc.Create(ctx, admin, dto.CreateSaleRequest{LeadID: "nope", ClientID: "cli-1", ProductID: "prod-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, admin, dto.CreateSaleRequest{LeadID: "l1", ClientID: "nope", ProductID: "prod-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, admin, dto.CreateSaleRequest{LeadID: "l1", ClientID: "cli-1", ProductID: "prod-off"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "producto inactivo")
	_, err = uc.Create(ctx, admin, dto.CreateSaleRequest{LeadID: "l1", ClientID: "cli-1", ProductID: "prod-1", Amount: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, admin, dto.CreateSaleRequest{LeadID: "l2", ClientID: "cli-1", ProductID: "prod-1"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSaleMarkPaid_CreaPagoComisionYCierraElLead(t *testing.T) {
	f := newFixture(t)
	f.seedLead(t, "l1", "Ana", entity.LeadStatusAwaitingPayment, "seller-1")
	spy := &trackerSpy{}
	uc := f.saleUC().WithRecoveryTracker(spy)
	ctx := context.Background()

	sale, err := uc.Create(ctx, admin, dto.CreateSaleRequest{LeadID: "l1", ClientID: "cli-1", ProductID: "prod-1", Amount: decimal.NewFromInt(1200)})
	require.NoError(t, err)

	out, err := uc.MarkPaid(ctx, admin, sale.ID, dto.MarkSalePaidRequest{Method: "card", ExternalRef: "ch_1"})
	require.NoError(t, err)
	assert.Equal(t, "paid", out.Sale.Status)
	assert.NotNil(t, out.Sale.PaidAt)
	assert.Equal(t, "paid", out.Payment.Status)
	assert.True(t, out.Payment.Amount.Equal(decimal.NewFromInt(1200)))
	require.NotNil(t, out.Commission)
	assert.True(t, out.Commission.Amount.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, "pending", out.Commission.Status)

	lead, err := f.store.Leads().GetByID(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, entity.LeadStatusPaid, lead.Status)
	assert.Len(t, f.jobs(t, entity.JobKindEmitPolicy), 1)
	assert.Equal(t, []string{"l1"}, spy.leads)

	payments, err := uc.ListPayments(ctx, sale.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)

	_, err = uc.MarkPaid(ctx, admin, sale.ID, dto.MarkSalePaidRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict, "no se paga dos veces")
}

func TestSaleCreate_RechazaLeadYaPagado(t *testing.T) {
	f := newFixture(t)
	f.seedLead(t, "l1", "Ana", entity.LeadStatusAwaitingPayment, "seller-1")
	uc := f.saleUC()
	ctx := context.Background()

	sale, err := uc.Create(ctx, admin, dto.CreateSaleRequest{LeadID: "l1", ClientID: "cli-1", ProductID: "prod-1"})
	require.NoError(t, err)
	_, err = uc.MarkPaid(ctx, admin, sale.ID, dto.MarkSalePaidRequest{})
	require.NoError(t, err)

	_, err = uc.Create(ctx, admin, dto.CreateSaleRequest{LeadID: "l1", ClientID: "cli-1", ProductID: "prod-1"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	jobs := f.jobs(t, entity.JobKindEmitPolicy)
	require.Len(t, jobs, 1)
	assert.Contains(t, string(jobs[0].Payload), `"sale_id":"`+sale.ID+`"`)
}

func TestSaleCancel_CancelaComisionPendiente(t *testing.T) {
	f := newFixture(t)
	f.seedLead(t, "l1", "Ana", entity.LeadStatusAwaitingPayment, "seller-1")
	uc := f.saleUC()
	ctx := context.Background()

	sale, err := uc.Create(ctx, admin, dto.CreateSaleRequest{LeadID: "l1", ClientID: "cli-1", ProductID: "prod-1"})
	require.NoError(t, err)
	paid, err := uc.MarkPaid(ctx, admin, sale.ID, dto.MarkSalePaidRequest{})
	require.NoError(t, err)

	out, err := uc.Cancel(ctx, admin, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", out.Status)

	c, err := f.store.Commissions().GetByID(ctx, paid.Commission.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CommissionStatusCancelled, c.Status)

	_, err = uc.Cancel(ctx, admin, sale.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSaleList_BuscaPorNombreDelTitularYFiltraSeller(t *testing.T) {
	f := newFixture(t)
	f.seedLead(t, "l1", "Ana", entity.LeadStatusNegotiation, "seller-1")
	f.seedLead(t, "l2", "Luis", entity.LeadStatusNegotiation, "seller-2")
	uc := f.saleUC()
	ctx := context.Background()

	_, err := uc.Create(ctx, admin, dto.CreateSaleRequest{LeadID: "l1", ClientID: "cli-1", ProductID: "prod-1"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, admin, dto.CreateSaleRequest{LeadID: "l2", ClientID: "cli-1", ProductID: "prod-1"})
	require.NoError(t, err)

	out, err := uc.List(ctx, admin, dto.SaleListQuery{Search: "gomez"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Page.Total)

	out, err = uc.List(ctx, seller2, dto.SaleListQuery{})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "seller-2", out.Items[0].SellerID)
}

func TestSaleRecordPayment_NoCambiaElEstadoDeLaVenta(t *testing.T) {
	f := newFixture(t)
	f.seedLead(t, "l1", "Ana", entity.LeadStatusNegotiation, "seller-1")
	uc := f.saleUC()
	ctx := context.Background()

	sale, err := uc.Create(ctx, admin, dto.CreateSaleRequest{LeadID: "l1", ClientID: "cli-1", ProductID: "prod-1"})
	require.NoError(t, err)
	p, err := uc.RecordPayment(ctx, admin, sale.ID, dto.RecordPaymentRequest{Method: "card", Status: "failed"})
	require.NoError(t, err)
	assert.Equal(t, "failed", p.Status)
	assert.Nil(t, p.PaidAt)
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(1000)))

	got, err := uc.GetByID(ctx, admin, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)

	_, err = uc.RecordPayment(ctx, admin, "nope", dto.RecordPaymentRequest{Method: "card", Status: "paid"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
