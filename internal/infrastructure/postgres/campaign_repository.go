package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

var _ repository.RecoveryCampaignRepository = (*CampaignRepo)(nil)

const campaignColumns = `id, name, channel, target_statuses, message_template, status, target_count,
	sent_count, failed_count, recovered_count, created_by, started_at, completed_at, created_at, updated_at`

// CampaignRepo campañas de recuperación. Los contadores solo cambian con
// Increment*, que suman en SQL para no perder incrementos concurrentes.
type CampaignRepo struct {
	q Querier
}

// NewCampaignRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCampaignRepository(q Querier) *CampaignRepo {
	return &CampaignRepo{q: q}
}

func scanCampaign(row rowScanner) (*entity.RecoveryCampaign, error) {
	var (
		c        entity.RecoveryCampaign
		statuses []string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Channel, &statuses, &c.MessageTemplate, &c.Status, &c.TargetCount,
		&c.SentCount, &c.FailedCount, &c.RecoveredCount, &c.CreatedBy, &c.StartedAt, &c.CompletedAt,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.TargetStatuses = make([]entity.LeadStatus, len(statuses))
	for i, s := range statuses {
		c.TargetStatuses[i] = entity.LeadStatus(s)
	}
	return &c, nil
}

func targetStatuses(c *entity.RecoveryCampaign) []string {
	out := make([]string, len(c.TargetStatuses))
	for i, s := range c.TargetStatuses {
		out[i] = string(s)
	}
	return out
}

func (r *CampaignRepo) Create(ctx context.Context, c *entity.RecoveryCampaign) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO recovery_campaigns (`+campaignColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		c.ID, c.Name, c.Channel, targetStatuses(c), c.MessageTemplate, c.Status, c.TargetCount,
		c.SentCount, c.FailedCount, c.RecoveredCount, c.CreatedBy, c.StartedAt, c.CompletedAt,
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepo) GetByID(ctx context.Context, id string) (*entity.RecoveryCampaign, error) {
	c, err := scanCampaign(r.q.QueryRow(ctx, `SELECT `+campaignColumns+` FROM recovery_campaigns WHERE id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

// Update no toca sent/failed/recovered.
func (r *CampaignRepo) Update(ctx context.Context, c *entity.RecoveryCampaign) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE recovery_campaigns SET name = $2, channel = $3, target_statuses = $4, message_template = $5,
		       status = $6, target_count = $7, started_at = $8, completed_at = $9, updated_at = $10
		WHERE id = $1`,
		c.ID, c.Name, c.Channel, targetStatuses(c), c.MessageTemplate, c.Status, c.TargetCount,
		c.StartedAt, c.CompletedAt, c.UpdatedAt)
	return mustAffect(tag, err, "update campaign", nil)
}

func (r *CampaignRepo) List(ctx context.Context, limit int) ([]*entity.RecoveryCampaign, error) {
	var c conds
	rows, err := r.q.Query(ctx, `SELECT `+campaignColumns+` FROM recovery_campaigns ORDER BY created_at DESC`+c.limit(limit), c.args...)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return collect(rows, scanCampaign)
}

// IncrementCounters completa la campaña en la misma sentencia cuando
// sent+failed alcanza target_count.
func (r *CampaignRepo) IncrementCounters(ctx context.Context, id string, sent, failed int) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE recovery_campaigns SET
		       sent_count   = sent_count + $2::int,
		       failed_count = failed_count + $3::int,
		       status = CASE
		           WHEN status = 'running' AND target_count > 0
		                AND sent_count + $2::int + failed_count + $3::int >= target_count THEN 'completed'
		           ELSE status END,
		       completed_at = CASE
		           WHEN status = 'running' AND target_count > 0
		                AND sent_count + $2::int + failed_count + $3::int >= target_count THEN now()
		           ELSE completed_at END,
		       updated_at = now()
		WHERE id = $1`, id, sent, failed)
	return mustAffect(tag, err, "increment campaign counters", nil)
}

func (r *CampaignRepo) IncrementRecovered(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE recovery_campaigns SET recovered_count = recovered_count + 1, updated_at = now()
		WHERE id = $1`, id)
	return mustAffect(tag, err, "increment campaign recovered", nil)
}
