package usecase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/functions"
	"github.com/jhoicas/seguros-api/internal/application/usecase"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
)

// ── Notificaciones ────────────────────────────────────────────────────────────

func TestNotifications_ListarYMarcarLeidas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, f.store.Notifications().Create(ctx, &entity.Notification{
			ID: id, UserID: "seller-1", Title: id, CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, f.store.Notifications().Create(ctx, &entity.Notification{ID: "other", UserID: "seller-2"}))
	uc := usecase.NewNotificationUseCase(f.store.Notifications(), f.changes)

	out, err := uc.List(ctx, "seller-1", false)
	require.NoError(t, err)
	assert.Len(t, out.Items, 3)
	assert.Equal(t, 3, out.Unread)
	assert.Equal(t, "n3", out.Items[0].ID, "más recientes primero")

	require.NoError(t, uc.MarkRead(ctx, "seller-1", "n1"))
	assert.ErrorIs(t, uc.MarkRead(ctx, "seller-1", "other"), domain.ErrNotFound, "no se marcan notificaciones ajenas")

	out, err = uc.List(ctx, "seller-1", false)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Unread)

	all, err := uc.MarkAllRead(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Updated)

	out, err = uc.List(ctx, "seller-1", true)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Zero(t, out.Unread)
}

// ── Auditoría ─────────────────────────────────────────────────────────────────

func TestComplianceReport_CuentaPorAccionUsuarioYFallos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()
	logs := []*entity.AuditLog{
		{ID: "a1", UserID: "admin-1", Action: "lead.created", EntityType: "lead", EntityID: "l1", CreatedAt: now.Add(-time.Hour)},
		{ID: "a2", UserID: "admin-1", Action: "sale.paid", EntityType: "sale", EntityID: "s1", CreatedAt: now.Add(-time.Hour)},
		{ID: "a3", Action: entity.AuditAutomationFailed, EntityType: "lead", EntityID: "l1", CreatedAt: now.Add(-time.Hour)},
		{ID: "a4", UserID: "seller-1", Action: "lead.created", EntityType: "lead", EntityID: "l2", CreatedAt: now.AddDate(0, 0, -60)},
	}
	for _, l := range logs {
		require.NoError(t, f.store.AuditLogs().Create(ctx, l))
	}
	uc := usecase.NewAuditUseCase(f.store.AuditLogs(), f.store.Analytics())

	rep, err := uc.ComplianceReport(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Total, "el rango por defecto son 30 días")
	assert.Equal(t, 1, rep.AutomationFailures)
	assert.Equal(t, 2, rep.ByUser["admin-1"])
	assert.Equal(t, 1, rep.ByUser["system"])
	assert.Equal(t, 2, rep.ByEntityType["lead"])

	_, err = uc.ComplianceReport(ctx, now, now.Add(-time.Hour))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := uc.List(ctx, dto.AuditLogListQuery{Search: "l1"})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Page.Total)

	list, err = uc.List(ctx, dto.AuditLogListQuery{Action: "lead.created"})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Page.Total)
}

func TestComplianceReport_CuentaTodoElPeriodoYListadoAvisaTruncado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()
	// Más filas que el máximo de lectura de los listados (5000).
	const n = 6000
	for i := 0; i < n; i++ {
		l := &entity.AuditLog{ID: fmt.Sprintf("a%05d", i), UserID: "admin-1", Action: "lead.updated", EntityType: "lead", CreatedAt: now.Add(-time.Minute)}
		if i%3 == 0 {
			l.UserID = ""
			l.Action = entity.AuditAutomationFailed
		}
		require.NoError(t, f.store.AuditLogs().Create(ctx, l))
	}
	uc := usecase.NewAuditUseCase(f.store.AuditLogs(), f.store.Analytics())

	rep, err := uc.ComplianceReport(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, n, rep.Total)
	assert.Equal(t, n/3, rep.AutomationFailures)
	assert.Equal(t, n/3, rep.ByUser["system"])
	assert.Equal(t, n-n/3, rep.ByUser["admin-1"])
	assert.Equal(t, n, rep.ByEntityType["lead"])

	list, err := uc.List(ctx, dto.AuditLogListQuery{})
	require.NoError(t, err)
	assert.True(t, list.Page.Truncated)
	assert.Equal(t, 5000, list.Page.Total)

	small, err := usecase.NewAuditUseCase(newFixture(t).store.AuditLogs(), nil).List(ctx, dto.AuditLogListQuery{})
	require.NoError(t, err)
	assert.False(t, small.Page.Truncated)
}

// ── Configuración y módulos ───────────────────────────────────────────────────

func TestConfigUpsert_ValidaJSONYAudita(t *testing.T) {
	f := newFixture(t)
	uc := usecase.NewConfigUseCase(f.store.Configs(), f.changes)
	ctx := context.Background()

	_, err := uc.Upsert(ctx, admin, "welcome_kit.delay", dto.UpsertConfigRequest{Value: json.RawMessage(`{bad`)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Upsert(ctx, admin, " ", dto.UpsertConfigRequest{Value: json.RawMessage(`1`)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := uc.Upsert(ctx, admin, "welcome_kit.delay", dto.UpsertConfigRequest{Value: json.RawMessage(`"5m"`), Description: "retraso"})
	require.NoError(t, err)
	assert.Equal(t, "admin-1", out.UpdatedBy)

	got, err := uc.Get(ctx, "welcome_kit.delay")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.JSONEq(t, `"5m"`, string(got.Value))

	missing, err := uc.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Len(t, f.audits(t, "config.updated"), 1)
}

func TestModuleService_ActivoSalvoFalseExplicito(t *testing.T) {
	f := newFixture(t)
	cfg := usecase.NewConfigUseCase(f.store.Configs(), f.changes)
	svc := usecase.NewModuleService(f.store.Configs())
	ctx := context.Background()

	ok, err := svc.IsEnabled(ctx, "campaigns")
	require.NoError(t, err)
	assert.True(t, ok, "sin clave el módulo está activo")

	_, err = cfg.Upsert(ctx, admin, usecase.ModulePrefix+"campaigns", dto.UpsertConfigRequest{Value: json.RawMessage(` false `)})
	require.NoError(t, err)
	ok, err = svc.IsEnabled(ctx, "campaigns")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.IsEnabled(ctx, "")
	assert.Error(t, err)
}

// ── Usuarios ──────────────────────────────────────────────────────────────────

type fakeIssuer struct{ userIDs []string }

func (f *fakeIssuer) IssueResetToken(_ context.Context, userID string, ttl time.Duration) (string, error) {
	f.userIDs = append(f.userIDs, userID)
	return "tok-" + userID, nil
}

func TestUserInvite_CreaInvitadoYEnviaToken(t *testing.T) {
	f := newFixture(t)
	issuer := &fakeIssuer{}
	inv := &recordingInvoker{}
	uc := usecase.NewUserUseCase(f.store.Users(), issuer, inv, f.changes)
	ctx := context.Background()

	out, err := uc.Invite(ctx, admin, dto.InviteUserRequest{Email: " Nuevo@Example.com ", Name: "Nuevo", Role: entity.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, "nuevo@example.com", out.Email)
	assert.Equal(t, entity.UserStatusInvited, out.Status)
	assert.Equal(t, []string{out.ID}, issuer.userIDs)

	require.Len(t, inv.calls, 1)
	assert.Equal(t, functions.SendUserInvitation, inv.calls[0].name)
	assert.Equal(t, "user-invitation:"+out.ID, inv.calls[0].key)
	var msg dto.UserInvitationMessage
	require.NoError(t, json.Unmarshal(inv.calls[0].payload, &msg))
	assert.Equal(t, "tok-"+out.ID, msg.Token)

	_, err = uc.Invite(ctx, admin, dto.InviteUserRequest{Email: "nuevo@example.com", Name: "Otro", Role: entity.RoleSeller})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	assert.Len(t, f.audits(t, "user.invited"), 1)
}

func TestUserUpdate_AdminNoSeSuspendeASiMismo(t *testing.T) {
	f := newFixture(t)
	uc := usecase.NewUserUseCase(f.store.Users(), &fakeIssuer{}, &recordingInvoker{}, f.changes)
	ctx := context.Background()
	suspended := entity.UserStatusSuspended
	manager := entity.RoleManager

	_, err := uc.Update(ctx, admin, "admin-1", dto.UpdateUserRequest{Status: &suspended})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = uc.Update(ctx, admin, "admin-1", dto.UpdateUserRequest{Role: &manager})
	assert.ErrorIs(t, err, domain.ErrConflict)

	out, err := uc.Update(ctx, admin, "seller-2", dto.UpdateUserRequest{Status: &suspended, Role: &manager})
	require.NoError(t, err)
	assert.Equal(t, suspended, out.Status)
	assert.Equal(t, manager, out.Role)

	_, err = uc.Update(ctx, admin, "nope", dto.UpdateUserRequest{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserList_BuscaPorNombreYEmail(t *testing.T) {
	f := newFixture(t)
	uc := usecase.NewUserUseCase(f.store.Users(), &fakeIssuer{}, &recordingInvoker{}, f.changes)

	out, err := uc.List(context.Background(), "sofia", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "seller-1", out.Items[0].ID)

	out, err = uc.List(context.Background(), "", dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, 3, out.Page.Total)
}

// ── Pólizas y jobs ────────────────────────────────────────────────────────────

type urlStorage struct{}

func (urlStorage) Upload(context.Context, string, string, []byte) error { return nil }
func (urlStorage) DownloadURL(_ context.Context, key string) (string, error) {
	return "https://files.example.com/" + key, nil
}

func TestPolicyWelcomeKitURL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Policies().Create(ctx, &entity.Policy{ID: "p1", Number: "POL-1", SaleID: "s1", Status: entity.PolicyStatusActive, WelcomeKitKey: "welcome-kits/POL-1.pdf"}))
	require.NoError(t, f.store.Policies().Create(ctx, &entity.Policy{ID: "p2", Number: "POL-2", SaleID: "s2", Status: entity.PolicyStatusActive}))
	uc := usecase.NewPolicyUseCase(f.store.Policies(), urlStorage{})

	out, err := uc.WelcomeKitURL(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/welcome-kits/POL-1.pdf", out.URL)

	_, err = uc.WelcomeKitURL(ctx, "p2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.WelcomeKitURL(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := uc.List(ctx, "active", dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Page.Total)
	assert.True(t, list.Items[0].HasWelcomeKit || list.Items[1].HasWelcomeKit)
}

func TestJobList_FiltraPorEstado(t *testing.T) {
	f := newFixture(t)
	f.seedLead(t, "l1", "Ana", entity.LeadStatusAwaitingPayment, "seller-1")
	f.seedPaidSale(t, "sale-1", "l1")
	_, err := f.leadUC().UpdateStatus(context.Background(), admin, "l1", dto.UpdateLeadStatusRequest{Status: "paid"})
	require.NoError(t, err)
	uc := usecase.NewJobUseCase(f.store.Jobs())

	queued, err := uc.List(context.Background(), "queued", 0)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, string(entity.JobKindEmitPolicy), queued[0].Kind)

	failed, err := uc.List(context.Background(), "failed", 0)
	require.NoError(t, err)
	assert.Empty(t, failed)
}
