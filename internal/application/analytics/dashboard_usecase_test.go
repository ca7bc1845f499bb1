package analytics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
	"github.com/jhoicas/seguros-api/internal/infrastructure/memory"
)

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Febrero 2026", monthLabel(time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Diciembre 2025", monthLabel(time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)))
}

func TestGetSummary_SinDatosNoDivideEntreCero(t *testing.T) {
	store := memory.NewStore()
	uc := NewDashboardUseCase(store.Analytics())

	out, err := uc.GetSummary(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, out.Pipeline.Total)
	assert.True(t, out.Pipeline.ConversionRate.IsZero())
	assert.True(t, out.Sales.AverageTicket.IsZero())
	assert.NotEmpty(t, out.DateLabel)
}

func TestGetSummary_PipelineVentasYMesEnCurso(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	for i, st := range []entity.LeadStatus{entity.LeadStatusNew, entity.LeadStatusPaid, entity.LeadStatusLost, entity.LeadStatusPaid} {
		seller := "seller-1"
		if i == 3 {
			seller = "seller-2"
		}
		require.NoError(t, store.Leads().Create(ctx, &entity.Lead{ID: string(rune('a' + i)), Name: "L", Status: st, SellerID: seller, CreatedAt: now}))
	}
	require.NoError(t, store.Sales().Create(ctx, &entity.Sale{ID: "s1", SellerID: "seller-1", Amount: decimal.NewFromInt(100), Status: entity.SaleStatusPaid, CreatedAt: now.AddDate(0, -1, 0)}))
	require.NoError(t, store.Sales().Create(ctx, &entity.Sale{ID: "s2", SellerID: "seller-1", Amount: decimal.NewFromInt(300), Status: entity.SaleStatusPaid, CreatedAt: now}))
	require.NoError(t, store.Sales().Create(ctx, &entity.Sale{ID: "s3", SellerID: "seller-2", Amount: decimal.NewFromInt(50), Status: entity.SaleStatusPending, CreatedAt: now}))
	require.NoError(t, store.Commissions().Create(ctx, &entity.Commission{ID: "c1", SaleID: "s1", SellerID: "seller-1", Amount: decimal.NewFromInt(10), Status: entity.CommissionStatusPaid, CreatedAt: now}))

	uc := NewDashboardUseCase(store.Analytics())
	uc.now = func() time.Time { return now }

	out, err := uc.GetSummary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 4, out.Pipeline.Total)
	assert.Equal(t, 2, out.Pipeline.Paid)
	assert.Equal(t, 3, out.Sales.Count)
	assert.Equal(t, 2, out.MonthSales.Count)
	assert.True(t, out.MonthSales.PaidAmount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, 1, out.Commissions.Count)
	assert.Equal(t, "Marzo 2026", out.DateLabel)

	mine, err := uc.GetSummary(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, 3, mine.Pipeline.Total)
	assert.Equal(t, 2, mine.Sales.Count)
	assert.True(t, mine.Sales.PaidAmount.Equal(decimal.NewFromInt(400)))
}

func TestGetSummary_CuentaMasAllaDeCualquierLimiteDeLectura(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	const n = 12000
	for i := 0; i < n; i++ {
		status := entity.LeadStatusNew
		if i%4 == 0 {
			status = entity.LeadStatusPaid
		}
		require.NoError(t, store.Leads().Create(ctx, &entity.Lead{
			ID: fmt.Sprintf("lead-%05d", i), Name: "L", Status: status, EstimatedValue: decimal.NewFromInt(1),
		}))
	}

	out, err := NewDashboardUseCase(store.Analytics()).GetSummary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, n, out.Pipeline.Total)
	assert.Equal(t, n/4, out.Pipeline.Paid)
	assert.Equal(t, "25.00", out.Pipeline.ConversionRate.StringFixed(2))
	assert.True(t, out.Pipeline.EstimatedValue.Equal(decimal.NewFromInt(n-n/4)))
}

type failingAnalytics struct {
	repository.AnalyticsRepository
}

func (failingAnalytics) LeadTotals(context.Context, string) ([]repository.StatusTotal, error) {
	return nil, errors.New("db caída")
}

func (failingAnalytics) SaleTotals(context.Context, string, time.Time) ([]repository.StatusTotal, error) {
	return nil, nil
}

func (failingAnalytics) CommissionTotals(context.Context, string) ([]repository.StatusTotal, error) {
	return nil, nil
}

func TestGetSummary_PropagaErrorDelRepositorio(t *testing.T) {
	_, err := NewDashboardUseCase(failingAnalytics{}).GetSummary(context.Background(), "")
	assert.ErrorContains(t, err, "dashboard: leads")
}
