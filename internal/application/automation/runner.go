package automation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/seguros-api/internal/application/functions"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// JobExecutor ejecuta y compensa jobs. Lo implementa *Executor.
type JobExecutor interface {
	Execute(ctx context.Context, job *entity.AutomationJob) error
	Compensate(ctx context.Context, job *entity.AutomationJob, cause error)
}

// DeferError pide volver a encolar el job en Until sin consumir un intento
// (p. ej. campaña en pausa).
type DeferError struct {
	Reason string
	Until  time.Time
}

func (e *DeferError) Error() string { return "job diferido: " + e.Reason }

// Runner pool de workers que consume automation_jobs.
type Runner struct {
	jobs repository.JobRepository
	exec JobExecutor
	cfg  Config
	log  zerolog.Logger
	now  func() time.Time
}

// NewRunner construye el pool.
func NewRunner(jobs repository.JobRepository, exec JobExecutor, cfg Config, log zerolog.Logger) *Runner {
	return &Runner{jobs: jobs, exec: exec, cfg: cfg.withDefaults(), log: log, now: time.Now}
}

// Run arranca cfg.Workers workers y bloquea hasta que ctx se cancela y
// todos terminan el job en curso.
func (r *Runner) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			r.worker(ctx, idx)
		}(i)
	}
	r.log.Info().Int("workers", r.cfg.Workers).Dur("poll", r.cfg.PollInterval).Msg("runner de automatización iniciado")
	wg.Wait()
	r.log.Info().Msg("runner de automatización detenido")
}

func (r *Runner) worker(ctx context.Context, idx int) {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()
	for {
		// Vaciar la cola antes de volver a esperar.
		for ctx.Err() == nil {
			found, err := r.ProcessNext(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					r.log.Error().Err(err).Int("worker", idx).Msg("error reclamando job")
				}
				break
			}
			if !found {
				break
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ProcessNext reclama y procesa un job. Devuelve false si no había jobs listos.
func (r *Runner) ProcessNext(ctx context.Context) (bool, error) {
	job, err := r.jobs.ClaimNext(ctx, r.cfg.LockFor)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	r.handle(ctx, job)
	return true, nil
}

func (r *Runner) handle(ctx context.Context, job *entity.AutomationJob) {
	log := r.log.With().Str("job_id", job.ID).Str("kind", string(job.Kind)).Int("attempt", job.Attempts).Logger()

	execCtx, cancel := context.WithTimeout(ctx, r.cfg.JobTimeout)
	err := r.exec.Execute(execCtx, job)
	cancel()

	// El estado final se persiste aunque el runner se esté deteniendo.
	persistCtx, cancelPersist := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancelPersist()

	if err == nil {
		if mErr := r.jobs.MarkSucceeded(persistCtx, job.ID); mErr != nil {
			log.Error().Err(mErr).Msg("no se pudo marcar el job como completado")
			return
		}
		log.Info().Msg("job completado")
		return
	}

	if ctx.Err() != nil {
		// Apagado: vuelve a la cola de inmediato y el intento no cuenta.
		if mErr := r.jobs.Defer(persistCtx, job.ID, r.now(), "interrumpido por apagado"); mErr != nil {
			log.Error().Err(mErr).Msg("no se pudo devolver el job a la cola")
		}
		return
	}

	var deferred *DeferError
	if errors.As(err, &deferred) {
		if mErr := r.jobs.Defer(persistCtx, job.ID, deferred.Until, deferred.Reason); mErr != nil {
			log.Error().Err(mErr).Msg("no se pudo diferir el job")
			return
		}
		log.Debug().Str("reason", deferred.Reason).Time("until", deferred.Until).Msg("job diferido")
		return
	}

	maxAttempts := job.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = r.cfg.MaxAttempts
	}
	if functions.IsTransient(err) && job.Attempts < maxAttempts {
		wait := Backoff(job.Attempts, r.cfg.BackoffBase, r.cfg.BackoffMax)
		if mErr := r.jobs.MarkRetry(persistCtx, job.ID, r.now().Add(wait), err.Error()); mErr != nil {
			log.Error().Err(mErr).Msg("no se pudo reprogramar el job")
			return
		}
		log.Warn().Err(err).Dur("retry_in", wait).Msg("job reprogramado")
		return
	}

	if mErr := r.jobs.MarkFailed(persistCtx, job.ID, err.Error()); mErr != nil {
		log.Error().Err(mErr).Msg("no se pudo marcar el job como fallido")
	}
	log.Error().Err(err).Msg("job fallido definitivamente, compensando")
	r.exec.Compensate(persistCtx, job, err)
}
