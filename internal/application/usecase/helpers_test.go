package usecase_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/seguros-api/internal/application/automation"
	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/application/usecase"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
	"github.com/jhoicas/seguros-api/internal/infrastructure/memory"
)

// ── Helpers de test ───────────────────────────────────────────────────────────

var (
	admin   = usecase.Actor{UserID: "admin-1", Role: entity.RoleAdmin, IP: "10.0.0.1"}
	seller1 = usecase.Actor{UserID: "seller-1", Role: entity.RoleSeller}
	seller2 = usecase.Actor{UserID: "seller-2", Role: entity.RoleSeller}
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.RealtimeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev ports.RealtimeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) channels() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Channel)
	}
	return out
}

type invocation struct {
	name    string
	payload json.RawMessage
	key     string
}

type recordingInvoker struct {
	mu    sync.Mutex
	calls []invocation
}

func (r *recordingInvoker) Invoke(_ context.Context, name string, payload json.RawMessage, key string) (json.RawMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, invocation{name, payload, key})
	return json.RawMessage(`{"ok":true}`), nil
}

type fixture struct {
	store   *memory.Store
	pub     *recordingPublisher
	changes *usecase.Changes
	closure *automation.LeadClosure
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	for _, u := range []*entity.User{
		{ID: "admin-1", Email: "admin@example.com", Name: "Admin", Role: entity.RoleAdmin, Status: entity.UserStatusActive},
		{ID: "seller-1", Email: "s1@example.com", Name: "Sofía Pérez", Role: entity.RoleSeller, Status: entity.UserStatusActive},
		{ID: "seller-2", Email: "s2@example.com", Name: "Bruno Lima", Role: entity.RoleSeller, Status: entity.UserStatusActive},
	} {
		require.NoError(t, store.Users().Create(ctx, u))
	}
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: "prod-1", Name: "Vida Plus", Price: decimal.NewFromInt(1000), CommissionRate: decimal.NewFromInt(10), Active: true,
	}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: "prod-off", Name: "Plan retirado", Price: decimal.NewFromInt(50), Active: false,
	}))
	require.NoError(t, store.Clients().Create(ctx, &entity.Client{ID: "cli-1", Name: "Ana Gómez", Document: "123"}))

	pub := &recordingPublisher{}
	return &fixture{
		store:   store,
		pub:     pub,
		changes: usecase.NewChanges(store.AuditLogs(), pub, zerolog.Nop()),
		closure: automation.NewLeadClosure(store.Jobs(), automation.DefaultConfig(), zerolog.Nop()),
	}
}

func (f *fixture) leadUC() *usecase.LeadUseCase {
	return usecase.NewLeadUseCase(f.store.Leads(), f.store.Products(), f.store.Users(), f.store.Notifications(),
		f.store.TxRunner(), f.closure, f.changes)
}

func (f *fixture) saleUC() *usecase.SaleUseCase {
	return usecase.NewSaleUseCase(f.store.Sales(), f.store.Payments(), f.store.Leads(), f.store.Clients(), f.store.Products(),
		f.store.TxRunner(), f.closure, f.changes)
}

func (f *fixture) seedLead(t *testing.T, id, name string, status entity.LeadStatus, sellerID string) *entity.Lead {
	t.Helper()
	l := &entity.Lead{ID: id, Name: name, Phone: "+57300" + id, Status: status, SellerID: sellerID}
	require.NoError(t, f.store.Leads().Create(context.Background(), l))
	return l
}

func (f *fixture) seedPaidSale(t *testing.T, id, leadID string) *entity.Sale {
	t.Helper()
	s := &entity.Sale{ID: id, LeadID: leadID, ClientID: "cli-1", ProductID: "prod-1", SellerID: "seller-1",
		Amount: decimal.NewFromInt(1000), Status: entity.SaleStatusPaid}
	require.NoError(t, f.store.Sales().Create(context.Background(), s))
	return s
}

func (f *fixture) audits(t *testing.T, action string) []*entity.AuditLog {
	t.Helper()
	list, err := f.store.AuditLogs().List(context.Background(), repository.AuditLogFilter{Action: action})
	require.NoError(t, err)
	return list
}

func (f *fixture) jobs(t *testing.T, kind entity.JobKind) []*entity.AutomationJob {
	t.Helper()
	list, err := f.store.Jobs().List(context.Background(), "", 0)
	require.NoError(t, err)
	out := []*entity.AutomationJob{}
	for _, j := range list {
		if j.Kind == kind {
			out = append(out, j)
		}
	}
	return out
}
