package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/filter"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// AuditUseCase consulta del registro de auditoría y reporte de compliance.
type AuditUseCase struct {
	repo      repository.AuditLogRepository
	analytics repository.AnalyticsRepository
}

// NewAuditUseCase construye el caso de uso.
func NewAuditUseCase(repo repository.AuditLogRepository, analytics repository.AnalyticsRepository) *AuditUseCase {
	return &AuditUseCase{repo: repo, analytics: analytics}
}

// List lista el registro más reciente primero.
func (uc *AuditUseCase) List(ctx context.Context, q dto.AuditLogListQuery) (*dto.AuditLogListResponse, error) {
	q.DefaultPage()
	list, err := uc.repo.List(ctx, repository.AuditLogFilter{
		EntityType: q.EntityType,
		UserID:     q.UserID,
		From:       q.From,
		To:         q.To,
		Limit:      listScanLimit,
	})
	if err != nil {
		return nil, err
	}
	matched := filter.Apply(list, func(a *entity.AuditLog) bool {
		return filter.MatchAuditLog(a, filter.AuditLogFilter{Search: q.Search, Action: q.Action, EntityType: q.EntityType})
	})
	page := filter.Page(matched, q.Limit, q.Offset)
	items := make([]dto.AuditLogResponse, 0, len(page))
	for _, a := range page {
		items = append(items, dto.AuditLogResponse{
			ID:         a.ID,
			UserID:     a.UserID,
			Action:     a.Action,
			EntityType: a.EntityType,
			EntityID:   a.EntityID,
			Details:    a.Details,
			IPAddress:  a.IPAddress,
			CreatedAt:  a.CreatedAt,
		})
	}
	return &dto.AuditLogListResponse{
		Items: items,
		Page:  pageResponse(q.Limit, q.Offset, len(matched), len(list)),
	}, nil
}

// ComplianceReport resume la actividad auditada en [from, to].
// Sin fechas se toman los últimos 30 días.
func (uc *AuditUseCase) ComplianceReport(ctx context.Context, from, to time.Time) (*dto.ComplianceReportDTO, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: from debe ser anterior a to", domain.ErrInvalidInput)
	}
	sum, err := uc.analytics.AuditSummary(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("compliance: %w", err)
	}
	byUser := make(map[string]int, len(sum.ByUser))
	for userID, n := range sum.ByUser {
		if userID == "" {
			userID = "system"
		}
		byUser[userID] += n
	}
	return &dto.ComplianceReportDTO{
		From:               from,
		To:                 to,
		Total:              sum.Total,
		ByAction:           sum.ByAction,
		ByEntityType:       sum.ByEntityType,
		ByUser:             byUser,
		AutomationFailures: sum.ByAction[entity.AuditAutomationFailed],
	}, nil
}
