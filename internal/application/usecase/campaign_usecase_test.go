package usecase_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/seguros-api/internal/application/automation"
	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/usecase"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
)

func (f *fixture) campaignUC() *usecase.CampaignUseCase {
	return usecase.NewCampaignUseCase(f.store.Campaigns(), f.store.Leads(), f.store.Jobs(), f.changes, zerolog.Nop())
}

func newCampaign(t *testing.T, uc *usecase.CampaignUseCase, channel string, statuses ...string) *dto.CampaignResponse {
	t.Helper()
	out, err := uc.Create(context.Background(), admin, dto.CreateCampaignRequest{
		Name: "Recuperar perdidos", Channel: channel, TargetStatuses: statuses, MessageTemplate: "Hola {{nombre}}, ¿retomamos?",
	})
	require.NoError(t, err)
	return out
}

func TestRenderTemplate(t *testing.T) {
	l := &entity.Lead{Name: "Ana"}
	assert.Equal(t, "Hola Ana / Ana", usecase.RenderTemplate("Hola {{nombre}} / {{name}}", l))
	assert.Equal(t, "sin variables", usecase.RenderTemplate("sin variables", l))
}

func TestContactFor(t *testing.T) {
	l := &entity.Lead{Email: "a@example.com", Phone: " +573001 "}
	assert.Equal(t, "a@example.com", usecase.ContactFor(usecase.ChannelEmail, l))
	assert.Equal(t, "+573001", usecase.ContactFor(usecase.ChannelWhatsApp, l))
	assert.Equal(t, "+573001", usecase.ContactFor(usecase.ChannelSMS, l))
}

func TestCampaignCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	uc := f.campaignUC()
	ctx := context.Background()

	_, err := uc.Create(ctx, admin, dto.CreateCampaignRequest{Name: "X", Channel: "fax", TargetStatuses: []string{"lost"}, MessageTemplate: "hola!"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, admin, dto.CreateCampaignRequest{Name: "X", Channel: "sms", TargetStatuses: []string{"paid"}, MessageTemplate: "hola!"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "paid no es un estado recuperable")

	out := newCampaign(t, uc, "whatsapp", "lost")
	assert.Equal(t, "draft", out.Status)
	assert.Equal(t, []string{"lost"}, out.TargetStatuses)
}

func TestCampaignLaunch_EncolaUnEnvioPorLeadConContacto(t *testing.T) {
	f := newFixture(t)
	f.seedLead(t, "l1", "Ana", entity.LeadStatusLost, "seller-1")
	f.seedLead(t, "l2", "Luis", entity.LeadStatusAwaitingPayment, "seller-2")
	f.seedLead(t, "l3", "Sin teléfono", entity.LeadStatusLost, "")
	f.seedLead(t, "l4", "Nuevo", entity.LeadStatusNew, "")
	ctx := context.Background()
	noPhone, err := f.store.Leads().GetByID(ctx, "l3")
	require.NoError(t, err)
	noPhone.Phone = ""
	require.NoError(t, f.store.Leads().Update(ctx, noPhone))

	uc := f.campaignUC()
	c := newCampaign(t, uc, "whatsapp", "lost", "awaiting_payment")

	out, err := uc.Launch(ctx, admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "running", out.Status)
	assert.Equal(t, 2, out.Metrics.TargetCount)
	assert.NotNil(t, out.StartedAt)

	jobs := f.jobs(t, entity.JobKindSendRecoveryMessage)
	require.Len(t, jobs, 2)
	var p automation.RecoveryPayload
	for _, j := range jobs {
		require.NoError(t, json.Unmarshal(j.Payload, &p))
		assert.Equal(t, c.ID, p.CampaignID)
		assert.Equal(t, "whatsapp", p.Channel)
		assert.NotEmpty(t, p.To)
		assert.NotContains(t, p.Message, "{{nombre}}")
		assert.Equal(t, automation.RecoveryKey(c.ID, p.LeadID), j.IdempotencyKey)
	}

	_, err = uc.Launch(ctx, admin, c.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "una campaña en curso no se relanza")
	assert.Len(t, f.audits(t, "campaign.launched"), 1)
}

func TestCampaignLaunch_SinDestinatariosQuedaCompletada(t *testing.T) {
	f := newFixture(t)
	uc := f.campaignUC()
	c := newCampaign(t, uc, "email", "lost")

	out, err := uc.Launch(context.Background(), admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", out.Status)
	assert.NotNil(t, out.CompletedAt)
	assert.Empty(t, f.jobs(t, entity.JobKindSendRecoveryMessage))
}

func TestCampaignPausaYReanuda(t *testing.T) {
	f := newFixture(t)
	f.seedLead(t, "l1", "Ana", entity.LeadStatusLost, "seller-1")
	uc := f.campaignUC()
	ctx := context.Background()
	c := newCampaign(t, uc, "sms", "lost")

	_, err := uc.Pause(ctx, admin, c.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "un borrador no se pausa")

	_, err = uc.Launch(ctx, admin, c.ID)
	require.NoError(t, err)
	out, err := uc.Pause(ctx, admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "paused", out.Status)

	out, err = uc.Launch(ctx, admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "running", out.Status)
	assert.Len(t, f.jobs(t, entity.JobKindSendRecoveryMessage), 1, "reanudar no vuelve a encolar")
}

func TestCampaignTrackRecovery_SoloCuentaEnviosExitosos(t *testing.T) {
	f := newFixture(t)
	f.seedLead(t, "l1", "Ana", entity.LeadStatusLost, "seller-1")
	f.seedLead(t, "l2", "Luis", entity.LeadStatusLost, "seller-1")
	uc := f.campaignUC()
	ctx := context.Background()
	c := newCampaign(t, uc, "whatsapp", "lost")
	_, err := uc.Launch(ctx, admin, c.ID)
	require.NoError(t, err)

	job, err := f.store.Jobs().GetByKey(ctx, automation.RecoveryKey(c.ID, "l1"))
	require.NoError(t, err)
	require.NotNil(t, job)
	require.NoError(t, f.store.Jobs().MarkSucceeded(ctx, job.ID))

	uc.TrackRecovery(ctx, "l1")
	uc.TrackRecovery(ctx, "l2") // envío aún en cola
	uc.TrackRecovery(ctx, "otro")

	got, err := uc.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Metrics.RecoveredCount)
}

func TestCampaignList_FiltraPorEstado(t *testing.T) {
	f := newFixture(t)
	uc := f.campaignUC()
	newCampaign(t, uc, "sms", "lost")
	c2 := newCampaign(t, uc, "email", "lost")
	_, err := uc.Launch(context.Background(), admin, c2.ID)
	require.NoError(t, err)

	out, err := uc.List(context.Background(), "draft", dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Page.Total)

	out, err = uc.List(context.Background(), "all", dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Page.Total)
}
