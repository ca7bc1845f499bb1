// Package memory implementa los repositorios en memoria. Se usa en tests y
// para levantar la API sin PostgreSQL (DB_DRIVER=memory). No es durable.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// Store agrupa todas las tablas bajo un único mutex.
type Store struct {
	mu            sync.Mutex
	leads         map[string]*entity.Lead
	clients       map[string]*entity.Client
	products      map[string]*entity.Product
	sales         map[string]*entity.Sale
	payments      map[string]*entity.Payment
	policies      map[string]*entity.Policy
	commissions   map[string]*entity.Commission
	users         map[string]*entity.User
	resets        map[string]*entity.PasswordReset
	notifications map[string]*entity.Notification
	campaigns     map[string]*entity.RecoveryCampaign
	auditLogs     []*entity.AuditLog
	configs       map[string]*entity.SystemConfig
	jobs          map[string]*entity.AutomationJob

	now func() time.Time
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		leads:         map[string]*entity.Lead{},
		clients:       map[string]*entity.Client{},
		products:      map[string]*entity.Product{},
		sales:         map[string]*entity.Sale{},
		payments:      map[string]*entity.Payment{},
		policies:      map[string]*entity.Policy{},
		commissions:   map[string]*entity.Commission{},
		users:         map[string]*entity.User{},
		resets:        map[string]*entity.PasswordReset{},
		notifications: map[string]*entity.Notification{},
		campaigns:     map[string]*entity.RecoveryCampaign{},
		configs:       map[string]*entity.SystemConfig{},
		jobs:          map[string]*entity.AutomationJob{},
		now:           time.Now,
	}
}

// SetClock reemplaza el reloj usado por la cola (tests).
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func limitSlice[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// Repositorios.

func (s *Store) Leads() *LeadRepo                   { return &LeadRepo{s} }
func (s *Store) Clients() *ClientRepo               { return &ClientRepo{s} }
func (s *Store) Products() *ProductRepo             { return &ProductRepo{s} }
func (s *Store) Sales() *SaleRepo                   { return &SaleRepo{s} }
func (s *Store) Payments() *PaymentRepo             { return &PaymentRepo{s} }
func (s *Store) Policies() *PolicyRepo              { return &PolicyRepo{s} }
func (s *Store) Commissions() *CommissionRepo       { return &CommissionRepo{s} }
func (s *Store) Users() *UserRepo                   { return &UserRepo{s} }
func (s *Store) PasswordResets() *PasswordResetRepo { return &PasswordResetRepo{s} }
func (s *Store) Notifications() *NotificationRepo   { return &NotificationRepo{s} }
func (s *Store) Campaigns() *CampaignRepo           { return &CampaignRepo{s} }
func (s *Store) AuditLogs() *AuditLogRepo           { return &AuditLogRepo{s} }
func (s *Store) Configs() *ConfigRepo               { return &ConfigRepo{s} }
func (s *Store) Jobs() *JobRepo                     { return &JobRepo{s} }

// TxRunner ejecuta fn con los repos del store. No hay rollback: las
// escrituras hechas antes de un error quedan aplicadas.
type TxRunner struct{ s *Store }

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner devuelve el runner de "transacciones" del store.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s} }

// RunInTx implementa ports.TxRunner.
func (t *TxRunner) RunInTx(ctx context.Context, fn func(r ports.TxRepos) error) error {
	return fn(ports.TxRepos{
		Leads:         t.s.Leads(),
		Sales:         t.s.Sales(),
		Payments:      t.s.Payments(),
		Commissions:   t.s.Commissions(),
		Policies:      t.s.Policies(),
		Jobs:          t.s.Jobs(),
		AuditLogs:     t.s.AuditLogs(),
		Notifications: t.s.Notifications(),
	})
}

// ── Leads ─────────────────────────────────────────────────────────────────────

type LeadRepo struct{ s *Store }

var _ repository.LeadRepository = (*LeadRepo)(nil)

func (r *LeadRepo) Create(_ context.Context, l *entity.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.leads[l.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.leads[l.ID] = clone(l)
	return nil
}

func (r *LeadRepo) GetByID(_ context.Context, id string) (*entity.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return clone(r.s.leads[id]), nil
}

func (r *LeadRepo) Update(_ context.Context, l *entity.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.leads[l.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.leads[l.ID] = clone(l)
	return nil
}

func (r *LeadRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.leads[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.leads, id)
	return nil
}

func (r *LeadRepo) List(_ context.Context, f repository.LeadListFilter) ([]*entity.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Lead, 0, len(r.s.leads))
	for _, l := range r.s.leads {
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if f.SellerID != "" && l.SellerID != f.SellerID {
			continue
		}
		out = append(out, clone(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return limitSlice(out, f.Limit), nil
}

// ── Clients ───────────────────────────────────────────────────────────────────

type ClientRepo struct{ s *Store }

var _ repository.ClientRepository = (*ClientRepo)(nil)

func (r *ClientRepo) Create(_ context.Context, c *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.clients {
		if existing.Document == c.Document {
			return domain.ErrDuplicate
		}
	}
	r.s.clients[c.ID] = clone(c)
	return nil
}

func (r *ClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return clone(r.s.clients[id]), nil
}

func (r *ClientRepo) GetByDocument(_ context.Context, document string) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.clients {
		if c.Document == document {
			return clone(c), nil
		}
	}
	return nil, nil
}

func (r *ClientRepo) Update(_ context.Context, c *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.clients[c.ID] = clone(c)
	return nil
}

func (r *ClientRepo) List(_ context.Context, limit int) ([]*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Client, 0, len(r.s.clients))
	for _, c := range r.s.clients {
		out = append(out, clone(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return limitSlice(out, limit), nil
}

// ── Products ──────────────────────────────────────────────────────────────────

type ProductRepo struct{ s *Store }

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.ID] = clone(p)
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return clone(r.s.products[id]), nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.products[p.ID] = clone(p)
	return nil
}

func (r *ProductRepo) List(_ context.Context, activeOnly bool) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ── Sales / Payments ──────────────────────────────────────────────────────────

type SaleRepo struct{ s *Store }

var _ repository.SaleRepository = (*SaleRepo)(nil)

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sales[sale.ID] = clone(sale)
	return nil
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return clone(r.s.sales[id]), nil
}

func (r *SaleRepo) GetPaidByLeadID(_ context.Context, leadID string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *entity.Sale
	for _, sale := range r.s.sales {
		if sale.LeadID != leadID || sale.Status != entity.SaleStatusPaid {
			continue
		}
		if latest == nil || sale.CreatedAt.After(latest.CreatedAt) {
			latest = sale
		}
	}
	return clone(latest), nil
}

func (r *SaleRepo) Update(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sales[sale.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.sales[sale.ID] = clone(sale)
	return nil
}

func (r *SaleRepo) List(_ context.Context, f repository.SaleListFilter) ([]*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Sale, 0, len(r.s.sales))
	for _, sale := range r.s.sales {
		if f.Status != "" && sale.Status != f.Status {
			continue
		}
		if f.SellerID != "" && sale.SellerID != f.SellerID {
			continue
		}
		out = append(out, clone(sale))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return limitSlice(out, f.Limit), nil
}

type PaymentRepo struct{ s *Store }

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

func (r *PaymentRepo) Create(_ context.Context, p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.payments[p.ID] = clone(p)
	return nil
}

func (r *PaymentRepo) ListBySale(_ context.Context, saleID string) ([]*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Payment{}
	for _, p := range r.s.payments {
		if p.SaleID == saleID {
			out = append(out, clone(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ── Policies ──────────────────────────────────────────────────────────────────

type PolicyRepo struct{ s *Store }

var _ repository.PolicyRepository = (*PolicyRepo)(nil)

func (r *PolicyRepo) Create(_ context.Context, p *entity.Policy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.policies {
		if existing.SaleID == p.SaleID || existing.Number == p.Number {
			return domain.ErrDuplicate
		}
	}
	r.s.policies[p.ID] = clone(p)
	return nil
}

func (r *PolicyRepo) GetByID(_ context.Context, id string) (*entity.Policy, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return clone(r.s.policies[id]), nil
}

func (r *PolicyRepo) GetBySaleID(_ context.Context, saleID string) (*entity.Policy, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.policies {
		if p.SaleID == saleID {
			return clone(p), nil
		}
	}
	return nil, nil
}

func (r *PolicyRepo) Update(_ context.Context, p *entity.Policy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.policies[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.policies[p.ID] = clone(p)
	return nil
}

func (r *PolicyRepo) List(_ context.Context, status entity.PolicyStatus, limit int) ([]*entity.Policy, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Policy{}
	for _, p := range r.s.policies {
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return limitSlice(out, limit), nil
}

// ── Commissions ───────────────────────────────────────────────────────────────

type CommissionRepo struct{ s *Store }

var _ repository.CommissionRepository = (*CommissionRepo)(nil)

func (r *CommissionRepo) Create(_ context.Context, c *entity.Commission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.commissions {
		if existing.SaleID == c.SaleID {
			return domain.ErrDuplicate
		}
	}
	r.s.commissions[c.ID] = clone(c)
	return nil
}

func (r *CommissionRepo) GetByID(_ context.Context, id string) (*entity.Commission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return clone(r.s.commissions[id]), nil
}

func (r *CommissionRepo) GetBySaleID(_ context.Context, saleID string) (*entity.Commission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.commissions {
		if c.SaleID == saleID {
			return clone(c), nil
		}
	}
	return nil, nil
}

func (r *CommissionRepo) Update(_ context.Context, c *entity.Commission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.commissions[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.commissions[c.ID] = clone(c)
	return nil
}

func (r *CommissionRepo) List(_ context.Context, f repository.CommissionListFilter) ([]*entity.Commission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Commission{}
	for _, c := range r.s.commissions {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.SellerID != "" && c.SellerID != f.SellerID {
			continue
		}
		out = append(out, clone(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return limitSlice(out, f.Limit), nil
}

// ── Users ─────────────────────────────────────────────────────────────────────

type UserRepo struct{ s *Store }

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.users[u.ID] = clone(u)
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return clone(r.s.users[id]), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return clone(u), nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.s.users[u.ID] = clone(u)
	return nil
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, clone(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if offset >= len(out) {
		return []*entity.User{}, nil
	}
	return limitSlice(out[offset:], limit), nil
}

type PasswordResetRepo struct{ s *Store }

var _ repository.PasswordResetRepository = (*PasswordResetRepo)(nil)

func (r *PasswordResetRepo) Create(_ context.Context, p *entity.PasswordReset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.resets[p.ID] = clone(p)
	return nil
}

func (r *PasswordResetRepo) GetByTokenHash(_ context.Context, hash string) (*entity.PasswordReset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.resets {
		if p.TokenHash == hash && p.UsedAt == nil {
			return clone(p), nil
		}
	}
	return nil, nil
}

func (r *PasswordResetRepo) MarkUsed(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.resets[id]
	if !ok || p.UsedAt != nil {
		return domain.ErrTokenExpired
	}
	now := r.s.now().UTC()
	p.UsedAt = &now
	return nil
}

// ── Notifications ─────────────────────────────────────────────────────────────

type NotificationRepo struct{ s *Store }

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

func (r *NotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.notifications[n.ID] = clone(n)
	return nil
}

func (r *NotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, limit int) ([]*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Notification{}
	for _, n := range r.s.notifications {
		if n.UserID != userID || (unreadOnly && n.ReadAt != nil) {
			continue
		}
		out = append(out, clone(n))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return limitSlice(out, limit), nil
}

func (r *NotificationRepo) MarkRead(_ context.Context, id, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	if n.ReadAt == nil {
		now := r.s.now().UTC()
		n.ReadAt = &now
	}
	return true, nil
}

func (r *NotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now().UTC()
	var n int64
	for _, item := range r.s.notifications {
		if item.UserID == userID && item.ReadAt == nil {
			t := now
			item.ReadAt = &t
			n++
		}
	}
	return n, nil
}

// ── Recovery campaigns ────────────────────────────────────────────────────────

type CampaignRepo struct{ s *Store }

var _ repository.RecoveryCampaignRepository = (*CampaignRepo)(nil)

func (r *CampaignRepo) Create(_ context.Context, c *entity.RecoveryCampaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.campaigns[c.ID] = clone(c)
	return nil
}

func (r *CampaignRepo) GetByID(_ context.Context, id string) (*entity.RecoveryCampaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return clone(r.s.campaigns[id]), nil
}

func (r *CampaignRepo) Update(_ context.Context, c *entity.RecoveryCampaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.campaigns[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	next := clone(c)
	next.SentCount, next.FailedCount, next.RecoveredCount = cur.SentCount, cur.FailedCount, cur.RecoveredCount
	r.s.campaigns[c.ID] = next
	return nil
}

func (r *CampaignRepo) List(_ context.Context, limit int) ([]*entity.RecoveryCampaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.RecoveryCampaign{}
	for _, c := range r.s.campaigns {
		out = append(out, clone(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return limitSlice(out, limit), nil
}

func (r *CampaignRepo) IncrementCounters(_ context.Context, id string, sent, failed int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.SentCount += sent
	c.FailedCount += failed
	now := r.s.now().UTC()
	c.UpdatedAt = now
	if c.TargetCount > 0 && c.SentCount+c.FailedCount >= c.TargetCount && c.Status == entity.CampaignStatusRunning {
		c.Status = entity.CampaignStatusCompleted
		c.CompletedAt = &now
	}
	return nil
}

func (r *CampaignRepo) IncrementRecovered(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.RecoveredCount++
	c.UpdatedAt = r.s.now().UTC()
	return nil
}

// ── Audit logs ────────────────────────────────────────────────────────────────

type AuditLogRepo struct{ s *Store }

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

func (r *AuditLogRepo) Create(_ context.Context, l *entity.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.auditLogs = append(r.s.auditLogs, clone(l))
	return nil
}

func (r *AuditLogRepo) List(_ context.Context, f repository.AuditLogFilter) ([]*entity.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.AuditLog{}
	for i := len(r.s.auditLogs) - 1; i >= 0; i-- {
		l := r.s.auditLogs[i]
		if f.Action != "" && l.Action != f.Action {
			continue
		}
		if f.EntityType != "" && l.EntityType != f.EntityType {
			continue
		}
		if f.UserID != "" && l.UserID != f.UserID {
			continue
		}
		if !f.From.IsZero() && l.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && l.CreatedAt.After(f.To) {
			continue
		}
		out = append(out, clone(l))
	}
	return limitSlice(out, f.Limit), nil
}

// ── System config ─────────────────────────────────────────────────────────────

type ConfigRepo struct{ s *Store }

var _ repository.SystemConfigRepository = (*ConfigRepo)(nil)

func (r *ConfigRepo) List(_ context.Context) ([]*entity.SystemConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.SystemConfig, 0, len(r.s.configs))
	for _, c := range r.s.configs {
		out = append(out, clone(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *ConfigRepo) Get(_ context.Context, key string) (*entity.SystemConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return clone(r.s.configs[key]), nil
}

func (r *ConfigRepo) Upsert(_ context.Context, c *entity.SystemConfig) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.configs[c.Key] = clone(c)
	return nil
}

// ── Automation jobs ───────────────────────────────────────────────────────────

type JobRepo struct{ s *Store }

var _ repository.JobRepository = (*JobRepo)(nil)

func (r *JobRepo) Enqueue(_ context.Context, job *entity.AutomationJob) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.jobs {
		if existing.IdempotencyKey == job.IdempotencyKey {
			return false, nil
		}
	}
	r.s.jobs[job.ID] = clone(job)
	return true, nil
}

func (r *JobRepo) ClaimNext(_ context.Context, lockFor time.Duration) (*entity.AutomationJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	var next *entity.AutomationJob
	for _, j := range r.s.jobs {
		ready := (j.Status == entity.JobStatusQueued && !j.RunAt.After(now)) ||
			(j.Status == entity.JobStatusRunning && j.LockedUntil != nil && j.LockedUntil.Before(now))
		if !ready {
			continue
		}
		if next == nil || j.RunAt.Before(next.RunAt) ||
			(j.RunAt.Equal(next.RunAt) && j.CreatedAt.Before(next.CreatedAt)) {
			next = j
		}
	}
	if next == nil {
		return nil, nil
	}
	until := now.Add(lockFor)
	next.Status = entity.JobStatusRunning
	next.Attempts++
	next.LockedUntil = &until
	next.UpdatedAt = now
	return clone(next), nil
}

func (r *JobRepo) update(id string, fn func(j *entity.AutomationJob)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(j)
	j.UpdatedAt = r.s.now()
	return nil
}

func (r *JobRepo) MarkSucceeded(_ context.Context, id string) error {
	return r.update(id, func(j *entity.AutomationJob) {
		j.Status = entity.JobStatusSucceeded
		j.LockedUntil = nil
		j.LastError = ""
	})
}

func (r *JobRepo) MarkRetry(_ context.Context, id string, runAt time.Time, lastErr string) error {
	return r.update(id, func(j *entity.AutomationJob) {
		j.Status = entity.JobStatusQueued
		j.RunAt = runAt
		j.LockedUntil = nil
		j.LastError = lastErr
	})
}

func (r *JobRepo) Defer(_ context.Context, id string, runAt time.Time, reason string) error {
	return r.update(id, func(j *entity.AutomationJob) {
		j.Status = entity.JobStatusQueued
		j.RunAt = runAt
		if j.Attempts > 0 {
			j.Attempts--
		}
		j.LockedUntil = nil
		j.LastError = reason
	})
}

func (r *JobRepo) MarkFailed(_ context.Context, id string, lastErr string) error {
	return r.update(id, func(j *entity.AutomationJob) {
		j.Status = entity.JobStatusFailed
		j.LockedUntil = nil
		j.LastError = lastErr
	})
}

func (r *JobRepo) List(_ context.Context, status entity.JobStatus, limit int) ([]*entity.AutomationJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.AutomationJob{}
	for _, j := range r.s.jobs {
		if status != "" && j.Status != status {
			continue
		}
		out = append(out, clone(j))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return limitSlice(out, limit), nil
}

func (r *JobRepo) GetByKey(_ context.Context, key string) (*entity.AutomationJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, j := range r.s.jobs {
		if j.IdempotencyKey == key {
			return clone(j), nil
		}
	}
	return nil, nil
}
