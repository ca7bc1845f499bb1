package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/filter"
)

func sampleLeads() []*entity.Lead {
	return []*entity.Lead{
		{ID: "1", Name: "José Pérez", Email: "jose@example.com", Phone: "3001234567", Status: entity.LeadStatusNew, SellerID: "s1", Source: "whatsapp"},
		{ID: "2", Name: "María Gómez", Email: "maria@example.com", Document: "1020304050", Status: entity.LeadStatusPaid, SellerID: "s2", Source: "web"},
		{ID: "3", Name: "Andrés Núñez", Email: "andres@correo.co", Status: entity.LeadStatusLost, SellerID: "s1", Source: "WhatsApp"},
		{ID: "4", Name: "Jose Luis Mora", Email: "jl@example.com", Status: entity.LeadStatusNew, SellerID: "s2", Source: "referido"},
	}
}

func ids(leads []*entity.Lead) []string {
	out := make([]string, 0, len(leads))
	for _, l := range leads {
		out = append(out, l.ID)
	}
	return out
}

func TestFold_QuitaAcentosYMayusculas(t *testing.T) {
	assert.Equal(t, "jose perez", filter.Fold("  JOSÉ Pérez "))
	assert.Equal(t, "nunez", filter.Fold("Núñez"))
	assert.Equal(t, "", filter.Fold(""))
}

func TestMatchLead_BusquedaInsensibleAAcentos(t *testing.T) {
	got := filter.Apply(sampleLeads(), func(l *entity.Lead) bool {
		return filter.MatchLead(l, filter.LeadFilter{Search: "jose"})
	})
	assert.Equal(t, []string{"1", "4"}, ids(got))
}

func TestMatchLead_BusquedaYEstadoCombinados(t *testing.T) {
	got := filter.Apply(sampleLeads(), func(l *entity.Lead) bool {
		return filter.MatchLead(l, filter.LeadFilter{Search: "example.com", Status: string(entity.LeadStatusNew)})
	})
	assert.Equal(t, []string{"1", "4"}, ids(got))
	for _, l := range got {
		assert.Equal(t, entity.LeadStatusNew, l.Status, "solo deben volver leads del estado pedido")
	}
}

func TestMatchLead_SinFiltrosDevuelveTodo(t *testing.T) {
	all := sampleLeads()
	got := filter.Apply(all, func(l *entity.Lead) bool { return filter.MatchLead(l, filter.LeadFilter{}) })
	assert.Len(t, got, len(all))

	got = filter.Apply(all, func(l *entity.Lead) bool {
		return filter.MatchLead(l, filter.LeadFilter{Status: filter.StatusAll})
	})
	assert.Len(t, got, len(all), `"all" equivale a sin filtro de estado`)
}

func TestMatchLead_DocumentoVendedorYOrigen(t *testing.T) {
	leads := sampleLeads()
	assert.True(t, filter.MatchLead(leads[1], filter.LeadFilter{Search: "102030"}))
	assert.False(t, filter.MatchLead(leads[1], filter.LeadFilter{SellerID: "s1"}))

	got := filter.Apply(leads, func(l *entity.Lead) bool {
		return filter.MatchLead(l, filter.LeadFilter{Source: "whatsapp"})
	})
	assert.Equal(t, []string{"1", "3"}, ids(got))
}

func TestMatchLead_SinCoincidenciasDevuelveSliceVacio(t *testing.T) {
	got := filter.Apply(sampleLeads(), func(l *entity.Lead) bool {
		return filter.MatchLead(l, filter.LeadFilter{Search: "zzz"})
	})
	require.NotNil(t, got)
	assert.Empty(t, got)
	assert.False(t, filter.MatchLead(nil, filter.LeadFilter{}))
}

func TestMatchClient(t *testing.T) {
	c := &entity.Client{Name: "Clínica Sánchez", City: "Bogotá", State: "DC", Document: "900123456"}
	assert.True(t, filter.MatchClient(c, filter.ClientFilter{Search: "bogota"}))
	assert.True(t, filter.MatchClient(c, filter.ClientFilter{Search: "sanchez", State: "dc"}))
	assert.False(t, filter.MatchClient(c, filter.ClientFilter{State: "ANT"}))
}

func TestMatchSale_PorNombreDelTitular(t *testing.T) {
	s := &entity.Sale{ID: "abc", Status: entity.SaleStatusPaid, PaymentMethod: "card"}
	assert.True(t, filter.MatchSale(s, "Ramón Díaz", filter.SaleFilter{Search: "ramon"}))
	assert.False(t, filter.MatchSale(s, "Ramón Díaz", filter.SaleFilter{Search: "ramon", Status: string(entity.SaleStatusPending)}))
}

func TestMatchCommissionYAuditLog(t *testing.T) {
	c := &entity.Commission{SaleID: "sale-1", SellerID: "u1", Status: entity.CommissionStatusApproved}
	assert.True(t, filter.MatchCommission(c, "Lucía", filter.CommissionFilter{Search: "lucia", Status: "approved"}))
	assert.False(t, filter.MatchCommission(c, "Lucía", filter.CommissionFilter{SellerID: "u2"}))

	a := &entity.AuditLog{Action: entity.AuditLeadClosureTriggered, EntityType: "lead", EntityID: "l1"}
	assert.True(t, filter.MatchAuditLog(a, filter.AuditLogFilter{Search: "closure"}))
	assert.True(t, filter.MatchAuditLog(a, filter.AuditLogFilter{Action: filter.StatusAll, EntityType: "lead"}))
	assert.False(t, filter.MatchAuditLog(a, filter.AuditLogFilter{Action: entity.AuditAutomationFailed}))
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2}, filter.Page(items, 2, 0))
	assert.Equal(t, []int{5}, filter.Page(items, 2, 4))
	assert.Equal(t, []int{}, filter.Page(items, 2, 10))
	assert.Equal(t, items, filter.Page(items, 0, 0), "limit 0 no recorta")
}
