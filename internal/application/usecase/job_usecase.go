package usecase

import (
	"context"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/filter"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// JobUseCase vista de operación de la cola de automatización.
type JobUseCase struct {
	repo repository.JobRepository
}

// NewJobUseCase construye el caso de uso.
func NewJobUseCase(repo repository.JobRepository) *JobUseCase {
	return &JobUseCase{repo: repo}
}

// List lista jobs por estado (vacío o "all" = todos).
func (uc *JobUseCase) List(ctx context.Context, status string, limit int) ([]dto.AutomationJobResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var st entity.JobStatus
	if status != "" && status != filter.StatusAll {
		st = entity.JobStatus(status)
	}
	list, err := uc.repo.List(ctx, st, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AutomationJobResponse, 0, len(list))
	for _, j := range list {
		out = append(out, dto.AutomationJobResponse{
			ID:             j.ID,
			Kind:           string(j.Kind),
			IdempotencyKey: j.IdempotencyKey,
			Payload:        j.Payload,
			Status:         string(j.Status),
			Attempts:       j.Attempts,
			MaxAttempts:    j.MaxAttempts,
			RunAt:          j.RunAt,
			LastError:      j.LastError,
			CreatedAt:      j.CreatedAt,
			UpdatedAt:      j.UpdatedAt,
		})
	}
	return out, nil
}
