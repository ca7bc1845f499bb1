package repository

import (
	"context"
	"time"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
)

// JobRepository cola durable de pasos de automatización.
type JobRepository interface {
	// Enqueue inserta el job; si ya existe uno con la misma IdempotencyKey
	// devuelve created=false sin error.
	Enqueue(ctx context.Context, job *entity.AutomationJob) (created bool, err error)
	// ClaimNext bloquea el siguiente job listo (queued con run_at vencido, o
	// running con el lock expirado) y lo marca running hasta now+lockFor.
	ClaimNext(ctx context.Context, lockFor time.Duration) (*entity.AutomationJob, error)
	MarkSucceeded(ctx context.Context, id string) error
	// MarkRetry devuelve el job a queued para ejecutarse en runAt.
	MarkRetry(ctx context.Context, id string, runAt time.Time, lastErr string) error
	// Defer devuelve el job a queued para runAt sin contar el intento en curso.
	Defer(ctx context.Context, id string, runAt time.Time, reason string) error
	MarkFailed(ctx context.Context, id string, lastErr string) error
	List(ctx context.Context, status entity.JobStatus, limit int) ([]*entity.AutomationJob, error)
	// GetByKey devuelve el job con esa clave de idempotencia (nil si no existe).
	GetByKey(ctx context.Context, key string) (*entity.AutomationJob, error)
}
