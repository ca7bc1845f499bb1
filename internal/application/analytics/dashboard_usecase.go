// Package analytics contiene los casos de uso del dashboard del back-office:
// pipeline de leads, ventas y comisiones.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/domain/metrics"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// DashboardUseCase genera el resumen del pipeline, ventas y comisiones.
//
// Los conteos y sumas por estado se hacen en la base (AnalyticsRepository) y
// los indicadores derivados en Go con domain/metrics.
type DashboardUseCase struct {
	analytics repository.AnalyticsRepository
	now       func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analytics repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analytics: analytics, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO. sellerID vacío = toda la
// operación; con sellerID solo cuenta los registros de ese vendedor.
//
// Cuatro agregados en paralelo:
//  1. leads por estado        → Pipeline
//  2. ventas por estado       → Sales (total)
//  3. ventas desde el día 1   → MonthSales (mes en curso)
//  4. comisiones por estado   → Commissions
func (uc *DashboardUseCase) GetSummary(ctx context.Context, sellerID string) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()

	// ── Mes en curso: día 1 a las 00:00 hasta ahora ───────────────────────────
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	// ── Goroutines para paralelizar las 4 consultas ──────────────────────────
	type totalsResult struct {
		rows []repository.StatusTotal
		err  error
	}
	run := func(fn func() ([]repository.StatusTotal, error)) <-chan totalsResult {
		ch := make(chan totalsResult, 1)
		go func() {
			rows, err := fn()
			ch <- totalsResult{rows, err}
		}()
		return ch
	}

	leadsCh := run(func() ([]repository.StatusTotal, error) { return uc.analytics.LeadTotals(ctx, sellerID) })
	salesCh := run(func() ([]repository.StatusTotal, error) { return uc.analytics.SaleTotals(ctx, sellerID, time.Time{}) })
	monthCh := run(func() ([]repository.StatusTotal, error) { return uc.analytics.SaleTotals(ctx, sellerID, monthStart) })
	commCh := run(func() ([]repository.StatusTotal, error) { return uc.analytics.CommissionTotals(ctx, sellerID) })

	leads := <-leadsCh
	sales := <-salesCh
	month := <-monthCh
	comm := <-commCh

	if leads.err != nil {
		return nil, fmt.Errorf("dashboard: leads: %w", leads.err)
	}
	if sales.err != nil {
		return nil, fmt.Errorf("dashboard: ventas: %w", sales.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("dashboard: ventas del mes: %w", month.err)
	}
	if comm.err != nil {
		return nil, fmt.Errorf("dashboard: comisiones: %w", comm.err)
	}

	return &dto.DashboardSummaryDTO{
		Pipeline:    metrics.PipelineFromTotals(leads.rows),
		Sales:       metrics.SalesFromTotals(sales.rows),
		Commissions: metrics.CommissionsFromTotals(comm.rows),
		MonthSales:  metrics.SalesFromTotals(month.rows),
		DateLabel:   monthLabel(now),
	}, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
