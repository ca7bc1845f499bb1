package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// LeadClosure dispara la cadena de cierre cuando un lead pasa a paid.
type LeadClosure struct {
	jobs repository.JobRepository
	cfg  Config
	log  zerolog.Logger
	now  func() time.Time
}

// NewLeadClosure construye el disparador.
func NewLeadClosure(jobs repository.JobRepository, cfg Config, log zerolog.Logger) *LeadClosure {
	return &LeadClosure{jobs: jobs, cfg: cfg.withDefaults(), log: log, now: time.Now}
}

// WithJobs devuelve una copia que encola sobre jobs (p. ej. el repo de una transacción).
func (lc *LeadClosure) WithJobs(jobs repository.JobRepository) *LeadClosure {
	cp := *lc
	cp.jobs = jobs
	return &cp
}

// OnStatusChanged encola emit_policy si la transición es hacia paid. saleID
// es la venta pagada que cierra el lead; vacío = se resuelve al ejecutar.
// Devuelve true si se creó el job; una segunda transición a paid del mismo
// lead no crea otra cadena.
func (lc *LeadClosure) OnStatusChanged(ctx context.Context, lead *entity.Lead, from, to entity.LeadStatus, saleID, actorID string) (bool, error) {
	if lead == nil || to != entity.LeadStatusPaid || from == entity.LeadStatusPaid {
		return false, nil
	}
	job, err := NewJob(entity.JobKindEmitPolicy, LeadClosureKey(lead.ID), leadClosurePayload{
		LeadID:   lead.ID,
		SaleID:   saleID,
		SellerID: lead.SellerID,
		ActorID:  actorID,
	}, lc.now(), lc.cfg.MaxAttempts)
	if err != nil {
		return false, err
	}
	created, err := lc.jobs.Enqueue(ctx, job)
	if err != nil {
		return false, fmt.Errorf("encolar cierre del lead %s: %w", lead.ID, err)
	}
	if created {
		lc.log.Info().Str("lead_id", lead.ID).Str("job_id", job.ID).Msg("cierre de lead encolado")
	} else {
		lc.log.Debug().Str("lead_id", lead.ID).Msg("cierre de lead ya encolado, se ignora")
	}
	return created, nil
}
