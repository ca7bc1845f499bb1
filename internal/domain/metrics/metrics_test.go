package metrics_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/metrics"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestPercentage_ZeroTotal(t *testing.T) {
	assert.True(t, metrics.Percentage(d("10"), decimal.Zero).IsZero())
	assert.True(t, metrics.PercentageInt(0, 0).IsZero())
	assert.Equal(t, "33.33", metrics.PercentageInt(1, 3).StringFixed(2))
}

func TestPipelineMetrics_Vacio(t *testing.T) {
	p := metrics.PipelineMetrics(nil)
	assert.Equal(t, 0, p.Total)
	assert.True(t, p.ConversionRate.IsZero())
	assert.True(t, p.LossRate.IsZero())
	assert.True(t, p.EstimatedValue.IsZero())
	assert.Len(t, p.ByStatus, len(entity.LeadStatuses()), "todos los estados aparecen aunque estén en cero")
}

func TestPipelineMetrics_Conteos(t *testing.T) {
	leads := []*entity.Lead{
		{Status: entity.LeadStatusNew, EstimatedValue: d("100")},
		{Status: entity.LeadStatusNegotiation, EstimatedValue: d("250.50")},
		{Status: entity.LeadStatusPaid, EstimatedValue: d("999")},
		{Status: entity.LeadStatusLost, EstimatedValue: d("999")},
	}
	p := metrics.PipelineMetrics(leads)
	assert.Equal(t, 4, p.Total)
	assert.Equal(t, 2, p.Open)
	assert.Equal(t, 1, p.Paid)
	assert.Equal(t, 1, p.Lost)
	assert.Equal(t, 1, p.ByStatus[entity.LeadStatusNew])
	assert.Equal(t, 0, p.ByStatus[entity.LeadStatusProposal])
	assert.Equal(t, "25.00", p.ConversionRate.StringFixed(2))
	assert.Equal(t, "350.50", p.EstimatedValue.StringFixed(2), "solo leads abiertos suman valor estimado")
}

func TestSalesMetrics(t *testing.T) {
	assert.True(t, metrics.SalesMetrics(nil).AverageTicket.IsZero())

	sales := []*entity.Sale{
		{Status: entity.SaleStatusPaid, Amount: d("100")},
		{Status: entity.SaleStatusPaid, Amount: d("200")},
		{Status: entity.SaleStatusPending, Amount: d("50")},
		{Status: entity.SaleStatusCancelled, Amount: d("1000")},
	}
	m := metrics.SalesMetrics(sales)
	assert.Equal(t, 4, m.Count)
	assert.Equal(t, 2, m.PaidCount)
	assert.Equal(t, "300", m.PaidAmount.String())
	assert.Equal(t, "50", m.PendingAmount.String())
	assert.Equal(t, "350", m.TotalAmount.String(), "canceladas no suman")
	assert.Equal(t, "150.00", m.AverageTicket.StringFixed(2))
	assert.Equal(t, "50.00", m.PaidRate.StringFixed(2))
}

func TestCommissionMetrics(t *testing.T) {
	empty := metrics.CommissionMetrics(nil)
	assert.True(t, empty.Total.IsZero())
	assert.True(t, empty.PaidShare.IsZero())

	list := []*entity.Commission{
		{Status: entity.CommissionStatusPaid, Amount: d("30")},
		{Status: entity.CommissionStatusPending, Amount: d("70")},
		{Status: entity.CommissionStatusCancelled, Amount: d("500")},
	}
	m := metrics.CommissionMetrics(list)
	assert.Equal(t, "100", m.Total.String())
	assert.Equal(t, "500", m.ByStatus[entity.CommissionStatusCancelled].String())
	assert.True(t, m.ByStatus[entity.CommissionStatusApproved].IsZero())
	assert.Equal(t, "30.00", m.PaidShare.StringFixed(2))
}

func TestCampaignMetrics(t *testing.T) {
	assert.True(t, metrics.CampaignMetrics(nil).Progress.IsZero())
	assert.True(t, metrics.CampaignMetrics(&entity.RecoveryCampaign{}).RecoveryRate.IsZero())

	m := metrics.CampaignMetrics(&entity.RecoveryCampaign{TargetCount: 10, SentCount: 8, FailedCount: 2, RecoveredCount: 2})
	assert.Equal(t, "80.00", m.DeliveryRate.StringFixed(2))
	assert.Equal(t, "25.00", m.RecoveryRate.StringFixed(2))
	assert.Equal(t, "100.00", m.Progress.StringFixed(2))
}

func TestSumDecimalYCountBy(t *testing.T) {
	sales := []*entity.Sale{{Amount: d("1.10"), Status: entity.SaleStatusPaid}, {Amount: d("2.20"), Status: entity.SaleStatusPaid}}
	assert.Equal(t, "3.3", metrics.SumDecimal(sales, func(s *entity.Sale) decimal.Decimal { return s.Amount }).String())
	counts := metrics.CountBy(sales, func(s *entity.Sale) entity.SaleStatus { return s.Status })
	assert.Equal(t, map[entity.SaleStatus]int{entity.SaleStatusPaid: 2}, counts)
}

func TestFromTotals_CoincideConLasListas(t *testing.T) {
	leads := []*entity.Lead{
		{Status: entity.LeadStatusNew, EstimatedValue: d("100")},
		{Status: entity.LeadStatusNew, EstimatedValue: d("50")},
		{Status: entity.LeadStatusPaid, EstimatedValue: d("999")},
	}
	totals := []repository.StatusTotal{
		{Status: "new", Count: 2, Amount: d("150")},
		{Status: "paid", Count: 1, Amount: d("999")},
	}
	fromList, fromTotals := metrics.PipelineMetrics(leads), metrics.PipelineFromTotals(totals)
	assert.Equal(t, fromList.ByStatus, fromTotals.ByStatus)
	assert.Equal(t, fromList.Open, fromTotals.Open)
	assert.Equal(t, "150", fromTotals.EstimatedValue.String())
	assert.Equal(t, fromList.EstimatedValue.String(), fromTotals.EstimatedValue.String())
	assert.Equal(t, fromList.ConversionRate.String(), fromTotals.ConversionRate.String())

	sales := metrics.SalesFromTotals([]repository.StatusTotal{
		{Status: "paid", Count: 3, Amount: d("300")},
		{Status: "pending", Count: 1, Amount: d("40")},
		{Status: "refunded", Count: 6, Amount: d("9000")},
	})
	assert.Equal(t, 10, sales.Count)
	assert.Equal(t, "340", sales.TotalAmount.String())
	assert.Equal(t, "100.00", sales.AverageTicket.StringFixed(2))
	assert.Equal(t, "30.00", sales.PaidRate.StringFixed(2))

	comm := metrics.CommissionsFromTotals([]repository.StatusTotal{
		{Status: "paid", Count: 2, Amount: d("25")},
		{Status: "cancelled", Count: 1, Amount: d("75")},
	})
	assert.Equal(t, 3, comm.Count)
	assert.Equal(t, "25", comm.Total.String())
	assert.Equal(t, "100.00", comm.PaidShare.StringFixed(2))
}

func TestTotalsBy_AgrupaComoSQL(t *testing.T) {
	sales := []*entity.Sale{
		{Status: entity.SaleStatusPaid, Amount: d("10")},
		{Status: entity.SaleStatusPending, Amount: d("5")},
		{Status: entity.SaleStatusPaid, Amount: d("20")},
	}
	totals := metrics.TotalsBy(sales,
		func(s *entity.Sale) string { return string(s.Status) },
		func(s *entity.Sale) decimal.Decimal { return s.Amount })
	require.Len(t, totals, 2)
	assert.Equal(t, "paid", totals[0].Status)
	assert.Equal(t, 2, totals[0].Count)
	assert.Equal(t, "30", totals[0].Amount.String())
	assert.Equal(t, 1, totals[1].Count)
}
