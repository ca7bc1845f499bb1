package automation

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jhoicas/seguros-api/internal/application/functions"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
	"github.com/jhoicas/seguros-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type call struct {
	Name    string
	Payload json.RawMessage
	Key     string
}

// scriptedInvoker responde según el nombre de la función y registra las llamadas.
type scriptedInvoker struct {
	mu       sync.Mutex
	calls    []call
	handlers map[string]func() (json.RawMessage, error)
}

func (s *scriptedInvoker) Invoke(_ context.Context, name string, payload json.RawMessage, key string) (json.RawMessage, error) {
	s.mu.Lock()
	s.calls = append(s.calls, call{Name: name, Payload: payload, Key: key})
	h := s.handlers[name]
	s.mu.Unlock()
	if h == nil {
		return json.RawMessage(`{}`), nil
	}
	return h()
}

func (s *scriptedInvoker) callsTo(name string) []call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []call
	for _, c := range s.calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// fakeClock reloj controlable compartido por store, executor y runner.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	store   *memory.Store
	clock   *fakeClock
	inv     *scriptedInvoker
	cfg     Config
	closure *LeadClosure
	exec    *Executor
	runner  *Runner
	lead    *entity.Lead
	sale    *entity.Sale
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	store.SetClock(clock.Now)

	inv := &scriptedInvoker{handlers: map[string]func() (json.RawMessage, error){
		functions.EmitPolicy: func() (json.RawMessage, error) {
			return json.RawMessage(`{"policy_id":"pol-1","policy_number":"POL-20260310-ABC123","created":true}`), nil
		},
		functions.GenerateWelcomeKit: func() (json.RawMessage, error) {
			return json.RawMessage(`{"policy_id":"pol-1","storage_key":"welcome-kits/POL-20260310-ABC123.pdf"}`), nil
		},
	}}

	cfg := Config{
		WelcomeKitDelay: 5 * time.Minute,
		MaxAttempts:     3,
		BackoffBase:     10 * time.Second,
		BackoffMax:      time.Minute,
		Workers:         2,
		PollInterval:    5 * time.Millisecond,
		LockFor:         time.Minute,
		JobTimeout:      time.Second,
	}
	log := zerolog.Nop()
	exec := NewExecutor(ExecutorDeps{
		Functions:     inv,
		Jobs:          store.Jobs(),
		Sales:         store.Sales(),
		AuditLogs:     store.AuditLogs(),
		Campaigns:     store.Campaigns(),
		Notifications: store.Notifications(),
	}, cfg, log)
	exec.now = clock.Now
	runner := NewRunner(store.Jobs(), exec, cfg, log)
	runner.now = clock.Now

	closure := NewLeadClosure(store.Jobs(), cfg, log)
	closure.now = clock.Now

	ctx := context.Background()
	lead := &entity.Lead{ID: "lead-1", Name: "Ana Ruiz", Status: entity.LeadStatusAwaitingPayment, SellerID: "seller-1", CreatedAt: clock.Now()}
	require.NoError(t, store.Leads().Create(ctx, lead))
	sale := &entity.Sale{ID: "sale-1", LeadID: lead.ID, SellerID: "seller-1", Amount: decimal.NewFromInt(1200), Status: entity.SaleStatusPaid, CreatedAt: clock.Now()}
	require.NoError(t, store.Sales().Create(ctx, sale))

	return &fixture{
		store: store, clock: clock, inv: inv, cfg: cfg,
		closure: closure,
		exec:    exec, runner: runner, lead: lead, sale: sale,
	}
}

func (f *fixture) audits(t *testing.T, action string) []*entity.AuditLog {
	t.Helper()
	list, err := f.store.AuditLogs().List(context.Background(), repository.AuditLogFilter{Action: action})
	require.NoError(t, err)
	return list
}

func (f *fixture) jobs(t *testing.T, status entity.JobStatus) []*entity.AutomationJob {
	t.Helper()
	list, err := f.store.Jobs().List(context.Background(), status, 0)
	require.NoError(t, err)
	return list
}

// ──────────────────────────────────────────────────────────────────────────────
// LeadClosure
// ──────────────────────────────────────────────────────────────────────────────

func TestLeadClosure_SoloDisparaHaciaPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.closure.OnStatusChanged(ctx, f.lead, entity.LeadStatusNew, entity.LeadStatusContacted, "", "u1")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = f.closure.OnStatusChanged(ctx, f.lead, entity.LeadStatusPaid, entity.LeadStatusPaid, "", "u1")
	require.NoError(t, err)
	assert.False(t, created, "paid → paid no es una transición")

	assert.Empty(t, f.jobs(t, ""))
}

func TestLeadClosure_Idempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.closure.OnStatusChanged(ctx, f.lead, entity.LeadStatusAwaitingPayment, entity.LeadStatusPaid, "", "u1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.closure.OnStatusChanged(ctx, f.lead, entity.LeadStatusLost, entity.LeadStatusPaid, "", "u1")
	require.NoError(t, err)
	assert.False(t, created, "un segundo cierre del mismo lead no crea otra cadena")

	jobs := f.jobs(t, "")
	require.Len(t, jobs, 1)
	assert.Equal(t, entity.JobKindEmitPolicy, jobs[0].Kind)
	assert.Equal(t, "lead-closure:lead-1", jobs[0].IdempotencyKey)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cadena completa vía Runner
// ──────────────────────────────────────────────────────────────────────────────

func TestRunner_CadenaDeCierreCompleta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.closure.OnStatusChanged(ctx, f.lead, entity.LeadStatusAwaitingPayment, entity.LeadStatusPaid, "", "u1")
	require.NoError(t, err)

	// Paso 1–2: emit-policy
	found, err := f.runner.ProcessNext(ctx)
	require.NoError(t, err)
	require.True(t, found)

	emits := f.inv.callsTo(functions.EmitPolicy)
	require.Len(t, emits, 1)
	assert.JSONEq(t, `{"sale_id":"sale-1"}`, string(emits[0].Payload))
	assert.Equal(t, "lead-closure:lead-1", emits[0].Key)

	triggered := f.audits(t, entity.AuditLeadClosureTriggered)
	require.Len(t, triggered, 1)
	assert.Equal(t, "lead-1", triggered[0].EntityID)
	assert.Equal(t, "u1", triggered[0].UserID)
	assert.Contains(t, string(triggered[0].Details), "POL-20260310-ABC123")

	// Paso 3: el kit queda diferido
	queued := f.jobs(t, entity.JobStatusQueued)
	require.Len(t, queued, 1)
	assert.Equal(t, entity.JobKindGenerateWelcomeKit, queued[0].Kind)
	assert.Equal(t, f.clock.Now().Add(5*time.Minute), queued[0].RunAt)

	found, err = f.runner.ProcessNext(ctx)
	require.NoError(t, err)
	assert.False(t, found, "el kit no corre antes del retraso")

	f.clock.Advance(5 * time.Minute)
	found, err = f.runner.ProcessNext(ctx)
	require.NoError(t, err)
	require.True(t, found)

	kits := f.inv.callsTo(functions.GenerateWelcomeKit)
	require.Len(t, kits, 1)
	assert.JSONEq(t, `{"sale_id":"sale-1"}`, string(kits[0].Payload))
	assert.Equal(t, "welcome-kit:sale-1", kits[0].Key)
	assert.Len(t, f.audits(t, entity.AuditWelcomeKitGenerated), 1)
	assert.Len(t, f.jobs(t, entity.JobStatusSucceeded), 2)
}

func TestRunner_ReintentaErroresTransitoriosConBackoff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.inv.handlers[functions.EmitPolicy] = func() (json.RawMessage, error) {
		return nil, functions.NewStatusError(functions.EmitPolicy, 503, "unavailable")
	}
	_, err := f.closure.OnStatusChanged(ctx, f.lead, entity.LeadStatusAwaitingPayment, entity.LeadStatusPaid, "", "")
	require.NoError(t, err)

	_, err = f.runner.ProcessNext(ctx)
	require.NoError(t, err)
	queued := f.jobs(t, entity.JobStatusQueued)
	require.Len(t, queued, 1)
	assert.Equal(t, 1, queued[0].Attempts)
	assert.Equal(t, f.clock.Now().Add(10*time.Second), queued[0].RunAt, "primer backoff = base")
	assert.Contains(t, queued[0].LastError, "503")

	f.clock.Advance(10 * time.Second)
	_, err = f.runner.ProcessNext(ctx)
	require.NoError(t, err)
	queued = f.jobs(t, entity.JobStatusQueued)
	require.Len(t, queued, 1)
	assert.Equal(t, f.clock.Now().Add(20*time.Second), queued[0].RunAt, "segundo backoff = 2*base")

	// Tercer intento = MaxAttempts → falla y compensa.
	f.clock.Advance(20 * time.Second)
	_, err = f.runner.ProcessNext(ctx)
	require.NoError(t, err)

	failed := f.jobs(t, entity.JobStatusFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, 3, failed[0].Attempts)
	assert.Len(t, f.inv.callsTo(functions.EmitPolicy), 3)

	comp := f.audits(t, entity.AuditAutomationFailed)
	require.Len(t, comp, 1)
	assert.Equal(t, "lead-1", comp[0].EntityID)

	notes, err := f.store.Notifications().ListByUser(ctx, "seller-1", true, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1, "el vendedor recibe aviso del fallo")
	assert.Equal(t, entity.NotificationError, notes[0].Type)
	assert.Empty(t, f.audits(t, entity.AuditLeadClosureTriggered))
}

func TestRunner_SinVentaFallaSinReintentar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orphan := &entity.Lead{ID: "lead-sin-venta", SellerID: "seller-2", Status: entity.LeadStatusNegotiation}
	require.NoError(t, f.store.Leads().Create(ctx, orphan))

	_, err := f.closure.OnStatusChanged(ctx, orphan, orphan.Status, entity.LeadStatusPaid, "", "")
	require.NoError(t, err)

	_, err = f.runner.ProcessNext(ctx)
	require.NoError(t, err)

	failed := f.jobs(t, entity.JobStatusFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].Attempts, "error permanente: sin reintentos")
	assert.Contains(t, failed[0].LastError, "venta")
	assert.Empty(t, f.inv.callsTo(functions.EmitPolicy))
	assert.Len(t, f.audits(t, entity.AuditAutomationFailed), 1)
}

func TestRunner_EmiteLaVentaPagadaAunqueHayaUnaVentaPosterior(t *testing.T) {
	for _, tc := range []struct {
		name   string
		saleID string
	}{
		{"venta en el payload", "sale-1"},
		{"resuelta por lead", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			_, err := f.closure.OnStatusChanged(ctx, f.lead, entity.LeadStatusAwaitingPayment, entity.LeadStatusPaid, tc.saleID, "u1")
			require.NoError(t, err)

			f.clock.Advance(time.Second)
			later := &entity.Sale{ID: "sale-2", LeadID: f.lead.ID, SellerID: "seller-1", Amount: decimal.NewFromInt(90),
				Status: entity.SaleStatusPending, CreatedAt: f.clock.Now()}
			require.NoError(t, f.store.Sales().Create(ctx, later))

			_, err = f.runner.ProcessNext(ctx)
			require.NoError(t, err)

			emits := f.inv.callsTo(functions.EmitPolicy)
			require.Len(t, emits, 1)
			assert.JSONEq(t, `{"sale_id":"sale-1"}`, string(emits[0].Payload))
			kits := f.jobs(t, entity.JobStatusQueued)
			require.Len(t, kits, 1)
			assert.Equal(t, "welcome-kit:sale-1", kits[0].IdempotencyKey)
		})
	}
}

func TestRunner_VentaNoPagadaFallaSinEmitir(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := &entity.Sale{ID: "sale-2", LeadID: f.lead.ID, SellerID: "seller-1", Amount: decimal.NewFromInt(90),
		Status: entity.SaleStatusPending, CreatedAt: f.clock.Now()}
	require.NoError(t, f.store.Sales().Create(ctx, pending))

	_, err := f.closure.OnStatusChanged(ctx, f.lead, entity.LeadStatusAwaitingPayment, entity.LeadStatusPaid, "sale-2", "")
	require.NoError(t, err)
	_, err = f.runner.ProcessNext(ctx)
	require.NoError(t, err)

	failed := f.jobs(t, entity.JobStatusFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].Attempts)
	assert.Empty(t, f.inv.callsTo(functions.EmitPolicy))
}

func TestRunner_CampanaEnPausaNoGastaIntentos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	campaign := &entity.RecoveryCampaign{ID: "camp-1", Status: entity.CampaignStatusPaused, TargetCount: 1, Channel: "whatsapp"}
	require.NoError(t, f.store.Campaigns().Create(ctx, campaign))
	job, err := NewJob(entity.JobKindSendRecoveryMessage, RecoveryKey("camp-1", "a"), RecoveryPayload{
		CampaignID: "camp-1", LeadID: "a", Channel: "whatsapp", To: "+57300", Message: "hola",
	}, f.clock.Now(), f.cfg.MaxAttempts)
	require.NoError(t, err)
	_, err = f.store.Jobs().Enqueue(ctx, job)
	require.NoError(t, err)

	// Más ciclos que MaxAttempts mientras la campaña sigue en pausa.
	for i := 0; i < f.cfg.MaxAttempts+2; i++ {
		found, err := f.runner.ProcessNext(ctx)
		require.NoError(t, err)
		require.True(t, found)
		f.clock.Advance(f.cfg.BackoffMax)
	}

	queued := f.jobs(t, entity.JobStatusQueued)
	require.Len(t, queued, 1)
	assert.Zero(t, queued[0].Attempts)
	assert.Empty(t, f.jobs(t, entity.JobStatusFailed))
	assert.Empty(t, f.inv.callsTo(functions.SendRecoveryMessage))

	got, err := f.store.Campaigns().GetByID(ctx, "camp-1")
	require.NoError(t, err)
	assert.Zero(t, got.FailedCount)

	got.Status = entity.CampaignStatusRunning
	require.NoError(t, f.store.Campaigns().Update(ctx, got))
	_, err = f.runner.ProcessNext(ctx)
	require.NoError(t, err)

	assert.Len(t, f.inv.callsTo(functions.SendRecoveryMessage), 1)
	got, err = f.store.Campaigns().GetByID(ctx, "camp-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.SentCount)
}

func TestRunner_ApagadoDevuelveElJobSinContarIntento(t *testing.T) {
	f := newFixture(t)
	f.inv.handlers[functions.EmitPolicy] = func() (json.RawMessage, error) {
		return nil, context.Canceled
	}
	_, err := f.closure.OnStatusChanged(context.Background(), f.lead, entity.LeadStatusAwaitingPayment, entity.LeadStatusPaid, "sale-1", "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	found, err := f.runner.ProcessNext(ctx)
	require.NoError(t, err)
	require.True(t, found)

	queued := f.jobs(t, entity.JobStatusQueued)
	require.Len(t, queued, 1)
	assert.Zero(t, queued[0].Attempts)
	assert.Empty(t, f.audits(t, entity.AuditAutomationFailed))
}

func TestRunner_EnvioDeCampanaCuentaEnviadosYFallidos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	campaign := &entity.RecoveryCampaign{ID: "camp-1", Status: entity.CampaignStatusRunning, TargetCount: 2, Channel: "whatsapp"}
	require.NoError(t, f.store.Campaigns().Create(ctx, campaign))

	for _, leadID := range []string{"a", "b"} {
		job, err := NewJob(entity.JobKindSendRecoveryMessage, RecoveryKey("camp-1", leadID), RecoveryPayload{
			CampaignID: "camp-1", LeadID: leadID, Channel: "whatsapp", To: "+57300", Message: "hola",
		}, f.clock.Now(), 1)
		require.NoError(t, err)
		_, err = f.store.Jobs().Enqueue(ctx, job)
		require.NoError(t, err)
	}

	calls := 0
	f.inv.handlers[functions.SendRecoveryMessage] = func() (json.RawMessage, error) {
		calls++
		if calls == 2 {
			return nil, functions.NewStatusError(functions.SendRecoveryMessage, 400, "número inválido")
		}
		return json.RawMessage(`{"ok":true}`), nil
	}

	for i := 0; i < 2; i++ {
		_, err := f.runner.ProcessNext(ctx)
		require.NoError(t, err)
	}

	got, err := f.store.Campaigns().GetByID(ctx, "camp-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.SentCount)
	assert.Equal(t, 1, got.FailedCount)
	assert.Equal(t, entity.CampaignStatusCompleted, got.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Run / goroutines
// ──────────────────────────────────────────────────────────────────────────────

func TestRunner_RunSeDetieneSinFugas(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	_, err := f.closure.OnStatusChanged(ctx, f.lead, entity.LeadStatusAwaitingPayment, entity.LeadStatusPaid, "", "")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		f.runner.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(f.inv.callsTo(functions.EmitPolicy)) == 1
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run no terminó tras cancelar el contexto")
	}
}

func TestBackoff(t *testing.T) {
	base, max := 10*time.Second, time.Minute
	assert.Equal(t, 10*time.Second, Backoff(0, base, max))
	assert.Equal(t, 10*time.Second, Backoff(1, base, max))
	assert.Equal(t, 20*time.Second, Backoff(2, base, max))
	assert.Equal(t, 40*time.Second, Backoff(3, base, max))
	assert.Equal(t, time.Minute, Backoff(4, base, max))
	assert.Equal(t, time.Minute, Backoff(60, base, max), "no desborda con muchos intentos")
}
