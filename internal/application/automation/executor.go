package automation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/functions"
	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// ExecutorDeps dependencias del ejecutor.
type ExecutorDeps struct {
	Functions     ports.FunctionInvoker
	Jobs          repository.JobRepository
	Sales         repository.SaleRepository
	AuditLogs     repository.AuditLogRepository
	Campaigns     repository.RecoveryCampaignRepository
	Notifications repository.NotificationRepository
	Publisher     ports.RealtimePublisher // opcional
}

// Executor ejecuta un job según su tipo.
type Executor struct {
	deps ExecutorDeps
	cfg  Config
	log  zerolog.Logger
	now  func() time.Time
}

// NewExecutor construye el ejecutor.
func NewExecutor(deps ExecutorDeps, cfg Config, log zerolog.Logger) *Executor {
	return &Executor{deps: deps, cfg: cfg.withDefaults(), log: log, now: time.Now}
}

// Execute despacha el job. Los errores permanentes vienen envueltos en
// *functions.FunctionError con Transient=false.
func (e *Executor) Execute(ctx context.Context, job *entity.AutomationJob) error {
	switch job.Kind {
	case entity.JobKindEmitPolicy:
		return e.emitPolicy(ctx, job)
	case entity.JobKindGenerateWelcomeKit:
		return e.generateWelcomeKit(ctx, job)
	case entity.JobKindSendRecoveryMessage:
		return e.sendRecoveryMessage(ctx, job)
	default:
		return functions.Permanent(string(job.Kind), fmt.Errorf("tipo de job desconocido %q", job.Kind))
	}
}

// emitPolicy pasos 1–2 del cierre: resuelve la venta pagada, invoca emit-policy
// y programa el kit de bienvenida (paso 3). Registra la auditoría (paso 4).
func (e *Executor) emitPolicy(ctx context.Context, job *entity.AutomationJob) error {
	var p leadClosurePayload
	if err := json.Unmarshal(job.Payload, &p); err != nil || p.LeadID == "" {
		return functions.Permanent(functions.EmitPolicy, fmt.Errorf("%w: payload de cierre inválido", domain.ErrInvalidInput))
	}

	sale, err := e.closingSale(ctx, p)
	if err != nil {
		return err
	}

	body, _ := json.Marshal(dto.EmitPolicyRequest{SaleID: sale.ID})
	out, err := e.deps.Functions.Invoke(ctx, functions.EmitPolicy, body, job.IdempotencyKey)
	if err != nil {
		return err
	}
	var emitted dto.EmitPolicyResponse
	if err := json.Unmarshal(out, &emitted); err != nil {
		e.log.Warn().Err(err).Str("sale_id", sale.ID).Msg("respuesta de emit-policy no reconocida")
	}

	sellerID := p.SellerID
	if sellerID == "" {
		sellerID = sale.SellerID
	}
	runAt := e.now().Add(e.cfg.WelcomeKitDelay)
	kit, err := NewJob(entity.JobKindGenerateWelcomeKit, WelcomeKitKey(sale.ID), welcomeKitPayload{
		LeadID:   p.LeadID,
		SaleID:   sale.ID,
		SellerID: sellerID,
	}, runAt, e.cfg.MaxAttempts)
	if err != nil {
		return err
	}
	if _, err := e.deps.Jobs.Enqueue(ctx, kit); err != nil {
		return fmt.Errorf("programar kit de bienvenida: %w", err)
	}

	return e.audit(ctx, p.ActorID, entity.AuditLeadClosureTriggered, "lead", p.LeadID, map[string]any{
		"sale_id":            sale.ID,
		"policy_id":          emitted.PolicyID,
		"policy_number":      emitted.PolicyNumber,
		"steps":              []string{functions.EmitPolicy, functions.GenerateWelcomeKit},
		"welcome_kit_run_at": runAt.UTC(),
		"job_id":             job.ID,
	})
}

// closingSale devuelve la venta que cerró el lead: la indicada en el payload
// o, si no viene, la venta pagada del lead. Solo acepta ventas pagadas.
func (e *Executor) closingSale(ctx context.Context, p leadClosurePayload) (*entity.Sale, error) {
	var (
		sale *entity.Sale
		err  error
	)
	if p.SaleID != "" {
		sale, err = e.deps.Sales.GetByID(ctx, p.SaleID)
	} else {
		sale, err = e.deps.Sales.GetPaidByLeadID(ctx, p.LeadID)
	}
	if err != nil {
		return nil, fmt.Errorf("buscar venta del lead %s: %w", p.LeadID, err)
	}
	if sale == nil || sale.LeadID != p.LeadID {
		return nil, functions.Permanent(functions.EmitPolicy, fmt.Errorf("lead %s: %w", p.LeadID, domain.ErrSaleNotFound))
	}
	if sale.Status != entity.SaleStatusPaid {
		return nil, functions.Permanent(functions.EmitPolicy,
			fmt.Errorf("%w: la venta %s está %s", domain.ErrConflict, sale.ID, sale.Status))
	}
	return sale, nil
}

func (e *Executor) generateWelcomeKit(ctx context.Context, job *entity.AutomationJob) error {
	var p welcomeKitPayload
	if err := json.Unmarshal(job.Payload, &p); err != nil || p.SaleID == "" {
		return functions.Permanent(functions.GenerateWelcomeKit, fmt.Errorf("%w: payload de kit inválido", domain.ErrInvalidInput))
	}
	body, _ := json.Marshal(dto.GenerateWelcomeKitRequest{SaleID: p.SaleID})
	out, err := e.deps.Functions.Invoke(ctx, functions.GenerateWelcomeKit, body, job.IdempotencyKey)
	if err != nil {
		return err
	}
	var kit dto.GenerateWelcomeKitResponse
	_ = json.Unmarshal(out, &kit)

	return e.audit(ctx, "", entity.AuditWelcomeKitGenerated, "sale", p.SaleID, map[string]any{
		"lead_id":     p.LeadID,
		"policy_id":   kit.PolicyID,
		"storage_key": kit.StorageKey,
		"job_id":      job.ID,
	})
}

func (e *Executor) sendRecoveryMessage(ctx context.Context, job *entity.AutomationJob) error {
	var p RecoveryPayload
	if err := json.Unmarshal(job.Payload, &p); err != nil || p.CampaignID == "" || p.LeadID == "" {
		return functions.Permanent(functions.SendRecoveryMessage, fmt.Errorf("%w: payload de campaña inválido", domain.ErrInvalidInput))
	}
	campaign, err := e.deps.Campaigns.GetByID(ctx, p.CampaignID)
	if err != nil {
		return fmt.Errorf("obtener campaña %s: %w", p.CampaignID, err)
	}
	if campaign == nil {
		return functions.Permanent(functions.SendRecoveryMessage, fmt.Errorf("campaña %s: %w", p.CampaignID, domain.ErrNotFound))
	}
	if campaign.Status == entity.CampaignStatusPaused {
		// Espera a que la campaña se reanude; no gasta intentos.
		return &DeferError{Reason: "campaña en pausa", Until: e.now().Add(e.cfg.BackoffMax)}
	}

	body, _ := json.Marshal(dto.RecoveryMessageRequest{
		CampaignID: p.CampaignID,
		LeadID:     p.LeadID,
		Channel:    p.Channel,
		To:         p.To,
		Message:    p.Message,
	})
	if _, err := e.deps.Functions.Invoke(ctx, functions.SendRecoveryMessage, body, job.IdempotencyKey); err != nil {
		return err
	}
	if err := e.deps.Campaigns.IncrementCounters(ctx, p.CampaignID, 1, 0); err != nil {
		return fmt.Errorf("actualizar contadores de campaña: %w", err)
	}
	e.publish(ctx, ports.RealtimeEvent{
		Channel: ports.TableChannel("recovery_campaigns"),
		Type:    ports.EventUpdate,
		Table:   "recovery_campaigns",
		ID:      p.CampaignID,
	})
	return nil
}

// Compensate registra el fallo terminal de job: auditoría automation.failed,
// notificación al vendedor y, en campañas, el contador de fallidos.
func (e *Executor) Compensate(ctx context.Context, job *entity.AutomationJob, cause error) {
	var ref struct {
		LeadID     string `json:"lead_id"`
		SaleID     string `json:"sale_id"`
		SellerID   string `json:"seller_id"`
		CampaignID string `json:"campaign_id"`
	}
	_ = json.Unmarshal(job.Payload, &ref)

	entityType, entityID := "lead", ref.LeadID
	if ref.CampaignID != "" {
		entityType, entityID = "recovery_campaign", ref.CampaignID
	}
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if err := e.audit(ctx, "", entity.AuditAutomationFailed, entityType, entityID, map[string]any{
		"job_id":   job.ID,
		"kind":     job.Kind,
		"attempts": job.Attempts,
		"sale_id":  ref.SaleID,
		"error":    msg,
	}); err != nil {
		e.log.Error().Err(err).Str("job_id", job.ID).Msg("no se pudo auditar el fallo de automatización")
	}

	if ref.CampaignID != "" && job.Kind == entity.JobKindSendRecoveryMessage {
		if err := e.deps.Campaigns.IncrementCounters(ctx, ref.CampaignID, 0, 1); err != nil {
			e.log.Error().Err(err).Str("campaign_id", ref.CampaignID).Msg("no se pudo contar el envío fallido")
		}
		return
	}

	if ref.SellerID == "" || e.deps.Notifications == nil {
		return
	}
	n := &entity.Notification{
		ID:        uuid.New().String(),
		UserID:    ref.SellerID,
		Type:      entity.NotificationError,
		Title:     failureTitle(job.Kind),
		Message:   fmt.Sprintf("La automatización falló tras %d intentos: %s", job.Attempts, msg),
		Link:      "/leads/" + ref.LeadID,
		CreatedAt: e.now().UTC(),
	}
	if err := e.deps.Notifications.Create(ctx, n); err != nil {
		e.log.Error().Err(err).Str("job_id", job.ID).Msg("no se pudo notificar al vendedor")
		return
	}
	e.publish(ctx, ports.RealtimeEvent{
		Channel: ports.UserChannel(ref.SellerID),
		Type:    ports.EventNotification,
		Table:   "notifications",
		ID:      n.ID,
		Payload: n,
	})
}

func failureTitle(kind entity.JobKind) string {
	switch kind {
	case entity.JobKindEmitPolicy:
		return "No se pudo emitir la póliza"
	case entity.JobKindGenerateWelcomeKit:
		return "No se pudo generar el kit de bienvenida"
	}
	return "Automatización fallida"
}

func (e *Executor) audit(ctx context.Context, userID, action, entityType, entityID string, details map[string]any) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("serializar auditoría: %w", err)
	}
	err = e.deps.AuditLogs.Create(ctx, &entity.AuditLog{
		ID:         uuid.New().String(),
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    raw,
		CreatedAt:  e.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("auditar %s: %w", action, err)
	}
	return nil
}

func (e *Executor) publish(ctx context.Context, ev ports.RealtimeEvent) {
	if e.deps.Publisher == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = e.now().UTC()
	}
	if err := e.deps.Publisher.Publish(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
		e.log.Debug().Err(err).Str("channel", ev.Channel).Msg("evento realtime descartado")
	}
}
