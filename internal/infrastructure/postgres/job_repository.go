package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

var _ repository.JobRepository = (*JobRepo)(nil)

const jobColumns = `id, kind, idempotency_key, payload, status, attempts, max_attempts, run_at,
	locked_until, last_error, created_at, updated_at`

// JobRepo cola durable sobre automation_jobs. Varios workers (o varias
// instancias) reclaman con FOR UPDATE SKIP LOCKED sin pisarse.
type JobRepo struct {
	q Querier
}

// NewJobRepository construye el adaptador. Pasar pool o tx (Querier).
func NewJobRepository(q Querier) *JobRepo {
	return &JobRepo{q: q}
}

func scanJob(row rowScanner) (*entity.AutomationJob, error) {
	var (
		j       entity.AutomationJob
		payload []byte
	)
	err := row.Scan(&j.ID, &j.Kind, &j.IdempotencyKey, &payload, &j.Status, &j.Attempts, &j.MaxAttempts,
		&j.RunAt, &j.LockedUntil, &j.LastError, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.Payload = payload
	return &j, nil
}

// Enqueue inserta el job salvo que ya exista su clave de idempotencia.
func (r *JobRepo) Enqueue(ctx context.Context, job *entity.AutomationJob) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO automation_jobs (id, kind, idempotency_key, payload, status, attempts, max_attempts,
		                             run_at, locked_until, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (idempotency_key) DO NOTHING`,
		job.ID, job.Kind, job.IdempotencyKey, jsonOrEmpty(job.Payload), job.Status, job.Attempts, job.MaxAttempts,
		job.RunAt, job.LockedUntil, job.LastError, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("enqueue job: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ClaimNext toma el job listo más antiguo (por run_at) y lo bloquea lockFor.
func (r *JobRepo) ClaimNext(ctx context.Context, lockFor time.Duration) (*entity.AutomationJob, error) {
	j, err := scanJob(r.q.QueryRow(ctx, `
		UPDATE automation_jobs SET
		       status = 'running',
		       attempts = attempts + 1,
		       locked_until = now() + make_interval(secs => $1),
		       updated_at = now()
		WHERE id = (
		    SELECT id FROM automation_jobs
		    WHERE (status = 'queued' AND run_at <= now())
		       OR (status = 'running' AND locked_until < now())
		    ORDER BY run_at, created_at
		    FOR UPDATE SKIP LOCKED
		    LIMIT 1
		)
		RETURNING `+jobColumns, lockFor.Seconds()))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim job: %w", err)
	}
	return j, nil
}

func (r *JobRepo) MarkSucceeded(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE automation_jobs SET status = 'succeeded', locked_until = NULL, last_error = '', updated_at = now()
		WHERE id = $1`, id)
	return mustAffect(tag, err, "mark job succeeded", nil)
}

func (r *JobRepo) MarkRetry(ctx context.Context, id string, runAt time.Time, lastErr string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE automation_jobs SET status = 'queued', run_at = $2, locked_until = NULL, last_error = $3, updated_at = now()
		WHERE id = $1`, id, runAt, lastErr)
	return mustAffect(tag, err, "mark job retry", nil)
}

// Defer reprograma el job y descuenta el intento que sumó ClaimNext.
func (r *JobRepo) Defer(ctx context.Context, id string, runAt time.Time, reason string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE automation_jobs SET status = 'queued', run_at = $2, attempts = GREATEST(attempts - 1, 0),
		       locked_until = NULL, last_error = $3, updated_at = now()
		WHERE id = $1`, id, runAt, reason)
	return mustAffect(tag, err, "defer job", nil)
}

func (r *JobRepo) MarkFailed(ctx context.Context, id string, lastErr string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE automation_jobs SET status = 'failed', locked_until = NULL, last_error = $2, updated_at = now()
		WHERE id = $1`, id, lastErr)
	return mustAffect(tag, err, "mark job failed", nil)
}

// List en orden de creación.
func (r *JobRepo) List(ctx context.Context, status entity.JobStatus, limit int) ([]*entity.AutomationJob, error) {
	var c conds
	if status != "" {
		c.add("status = $%d", string(status))
	}
	query := `SELECT ` + jobColumns + ` FROM automation_jobs` + c.where() + ` ORDER BY created_at` + c.limit(limit)
	rows, err := r.q.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return collect(rows, scanJob)
}

func (r *JobRepo) GetByKey(ctx context.Context, key string) (*entity.AutomationJob, error) {
	j, err := scanJob(r.q.QueryRow(ctx, `SELECT `+jobColumns+` FROM automation_jobs WHERE idempotency_key = $1`, key))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get job by key: %w", err)
	}
	return j, nil
}
