package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/seguros-api/internal/application/automation"
	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/display"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/filter"
	"github.com/jhoicas/seguros-api/internal/domain/metrics"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// Canales de campaña.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
	ChannelSMS      = "sms"
)

// CampaignUseCase campañas de recuperación de leads.
type CampaignUseCase struct {
	repo    repository.RecoveryCampaignRepository
	leads   repository.LeadRepository
	jobs    repository.JobRepository
	changes *Changes
	log     zerolog.Logger
}

// NewCampaignUseCase construye el caso de uso.
func NewCampaignUseCase(
	repo repository.RecoveryCampaignRepository,
	leads repository.LeadRepository,
	jobs repository.JobRepository,
	changes *Changes,
	log zerolog.Logger,
) *CampaignUseCase {
	return &CampaignUseCase{repo: repo, leads: leads, jobs: jobs, changes: changes, log: log}
}

var _ RecoveryTracker = (*CampaignUseCase)(nil)

// Create crea la campaña en borrador.
func (uc *CampaignUseCase) Create(ctx context.Context, actor Actor, in dto.CreateCampaignRequest) (*dto.CampaignResponse, error) {
	if !validChannel(in.Channel) {
		return nil, fmt.Errorf("%w: canal %q", domain.ErrInvalidInput, in.Channel)
	}
	if len(in.TargetStatuses) == 0 {
		return nil, fmt.Errorf("%w: target_statuses es obligatorio", domain.ErrInvalidInput)
	}
	targets := make([]entity.LeadStatus, 0, len(in.TargetStatuses))
	for _, s := range in.TargetStatuses {
		st := entity.LeadStatus(s)
		if st == entity.LeadStatusPaid || display.LeadStatus(st).Label == display.FallbackLabel {
			return nil, fmt.Errorf("%w: estado objetivo %q", domain.ErrInvalidInput, s)
		}
		targets = append(targets, st)
	}
	now := time.Now().UTC()
	c := &entity.RecoveryCampaign{
		ID:              uuid.New().String(),
		Name:            strings.TrimSpace(in.Name),
		Channel:         in.Channel,
		TargetStatuses:  targets,
		MessageTemplate: in.MessageTemplate,
		Status:          entity.CampaignStatusDraft,
		CreatedBy:       actor.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	if err := uc.changes.Audit(ctx, nil, actor, "campaign.created", "recovery_campaign", c.ID, map[string]any{"name": c.Name}); err != nil {
		return nil, err
	}
	uc.changes.Publish(ctx, "recovery_campaigns", ports.EventInsert, c.ID)
	return toCampaignResponse(c), nil
}

// List lista campañas, las más recientes primero.
func (uc *CampaignUseCase) List(ctx context.Context, status string, page dto.PageRequest) (*dto.CampaignListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, listScanLimit)
	if err != nil {
		return nil, err
	}
	matched := filter.Apply(list, func(c *entity.RecoveryCampaign) bool {
		return status == "" || status == filter.StatusAll || string(c.Status) == status
	})
	paged := filter.Page(matched, page.Limit, page.Offset)
	items := make([]dto.CampaignResponse, 0, len(paged))
	for _, c := range paged {
		items = append(items, *toCampaignResponse(c))
	}
	return &dto.CampaignListResponse{
		Items: items,
		Page:  pageResponse(page.Limit, page.Offset, len(matched), len(list)),
	}, nil
}

// GetByID obtiene una campaña (nil si no existe).
func (uc *CampaignUseCase) GetByID(ctx context.Context, id string) (*dto.CampaignResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	return toCampaignResponse(c), nil
}

// Launch arranca una campaña en borrador: encola un send_recovery_message por
// cada lead en los estados objetivo con dato de contacto para el canal.
// Sobre una campaña en pausa, la reanuda.
func (uc *CampaignUseCase) Launch(ctx context.Context, actor Actor, id string) (*dto.CampaignResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now().UTC()
	switch c.Status {
	case entity.CampaignStatusPaused:
		c.Status = entity.CampaignStatusRunning
		c.UpdatedAt = now
		if err := uc.repo.Update(ctx, c); err != nil {
			return nil, err
		}
		return uc.afterChange(ctx, actor, c, "campaign.resumed", nil)
	case entity.CampaignStatusDraft:
	default:
		return nil, fmt.Errorf("%w: la campaña está %s", domain.ErrInvalidTransition, c.Status)
	}

	targets, err := uc.targets(ctx, c)
	if err != nil {
		return nil, err
	}
	// Primero running con el total: los contadores de los jobs se suman sobre él.
	c.Status = entity.CampaignStatusRunning
	c.TargetCount = len(targets)
	c.StartedAt = &now
	c.UpdatedAt = now
	if len(targets) == 0 {
		c.Status = entity.CampaignStatusCompleted
		c.CompletedAt = &now
	}
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	enqueued := 0
	for _, lead := range targets {
		job, err := automation.NewJob(entity.JobKindSendRecoveryMessage, automation.RecoveryKey(c.ID, lead.ID), automation.RecoveryPayload{
			CampaignID: c.ID,
			LeadID:     lead.ID,
			SellerID:   lead.SellerID,
			Channel:    c.Channel,
			To:         ContactFor(c.Channel, lead),
			Message:    RenderTemplate(c.MessageTemplate, lead),
		}, now, 0)
		if err != nil {
			return nil, err
		}
		if _, err := uc.jobs.Enqueue(ctx, job); err != nil {
			return nil, fmt.Errorf("encolar envío de campaña: %w", err)
		}
		enqueued++
	}
	uc.log.Info().Str("campaign_id", c.ID).Int("targets", enqueued).Msg("campaña lanzada")
	return uc.afterChange(ctx, actor, c, "campaign.launched", map[string]any{"target_count": enqueued})
}

// Pause detiene una campaña en curso; los envíos pendientes esperan a que se reanude.
func (uc *CampaignUseCase) Pause(ctx context.Context, actor Actor, id string) (*dto.CampaignResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if c.Status != entity.CampaignStatusRunning {
		return nil, fmt.Errorf("%w: la campaña está %s", domain.ErrInvalidTransition, c.Status)
	}
	c.Status = entity.CampaignStatusPaused
	c.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return uc.afterChange(ctx, actor, c, "campaign.paused", nil)
}

// TrackRecovery suma un recuperado a cada campaña que envió con éxito un
// mensaje al lead que acaba de pagar. Los errores solo se registran.
func (uc *CampaignUseCase) TrackRecovery(ctx context.Context, leadID string) {
	list, err := uc.repo.List(ctx, listScanLimit)
	if err != nil {
		uc.log.Warn().Err(err).Str("lead_id", leadID).Msg("no se pudo revisar campañas para el recuperado")
		return
	}
	for _, c := range list {
		if c.Status == entity.CampaignStatusDraft {
			continue
		}
		job, err := uc.jobs.GetByKey(ctx, automation.RecoveryKey(c.ID, leadID))
		if err != nil {
			uc.log.Warn().Err(err).Str("campaign_id", c.ID).Msg("no se pudo consultar el envío de campaña")
			continue
		}
		if job == nil || job.Status != entity.JobStatusSucceeded {
			continue
		}
		if err := uc.repo.IncrementRecovered(ctx, c.ID); err != nil {
			uc.log.Warn().Err(err).Str("campaign_id", c.ID).Msg("no se pudo contar el recuperado")
			continue
		}
		uc.log.Info().Str("campaign_id", c.ID).Str("lead_id", leadID).Msg("lead recuperado por campaña")
		uc.changes.Publish(ctx, "recovery_campaigns", ports.EventUpdate, c.ID)
	}
}

func (uc *CampaignUseCase) targets(ctx context.Context, c *entity.RecoveryCampaign) ([]*entity.Lead, error) {
	var out []*entity.Lead
	for _, st := range c.TargetStatuses {
		leads, err := uc.leads.List(ctx, repository.LeadListFilter{Status: st, Limit: listScanLimit})
		if err != nil {
			return nil, err
		}
		for _, l := range leads {
			if ContactFor(c.Channel, l) != "" {
				out = append(out, l)
			}
		}
	}
	return out, nil
}

func (uc *CampaignUseCase) afterChange(ctx context.Context, actor Actor, c *entity.RecoveryCampaign, action string, details any) (*dto.CampaignResponse, error) {
	if err := uc.changes.Audit(ctx, nil, actor, action, "recovery_campaign", c.ID, details); err != nil {
		return nil, err
	}
	uc.changes.Publish(ctx, "recovery_campaigns", ports.EventUpdate, c.ID)
	return toCampaignResponse(c), nil
}

// ContactFor devuelve el destinatario del lead para el canal (vacío si no tiene).
func ContactFor(channel string, l *entity.Lead) string {
	if channel == ChannelEmail {
		return strings.TrimSpace(l.Email)
	}
	return strings.TrimSpace(l.Phone)
}

// RenderTemplate reemplaza {{nombre}} / {{name}} por el nombre del lead.
func RenderTemplate(tpl string, l *entity.Lead) string {
	return strings.NewReplacer("{{nombre}}", l.Name, "{{name}}", l.Name).Replace(tpl)
}

func validChannel(ch string) bool {
	switch ch {
	case ChannelWhatsApp, ChannelEmail, ChannelSMS:
		return true
	}
	return false
}

func toCampaignResponse(c *entity.RecoveryCampaign) *dto.CampaignResponse {
	targets := make([]string, 0, len(c.TargetStatuses))
	for _, s := range c.TargetStatuses {
		targets = append(targets, string(s))
	}
	return &dto.CampaignResponse{
		ID:              c.ID,
		Name:            c.Name,
		Channel:         c.Channel,
		TargetStatuses:  targets,
		MessageTemplate: c.MessageTemplate,
		Status:          string(c.Status),
		StatusBadge:     display.CampaignStatus(c.Status),
		Metrics:         metrics.CampaignMetrics(c),
		CreatedBy:       c.CreatedBy,
		StartedAt:       c.StartedAt,
		CompletedAt:     c.CompletedAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
