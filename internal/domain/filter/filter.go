// Package filter contiene los predicados de búsqueda del back-office.
//
// La búsqueda es insensible a mayúsculas y acentos ("jose" encuentra "José")
// y cubre los campos de texto que el dashboard muestra en cada listado.
// Búsqueda vacía y estado vacío (o "all") no filtran.
package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
)

// StatusAll valor que el frontend envía para "todos los estados".
const StatusAll = "all"

// Fold normaliza s para comparación: sin acentos, case-folded y sin espacios extremos.
// Los transformers de x/text no son seguros para uso concurrente; se crean por llamada.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// containsAny informa si algún campo contiene el término ya normalizado.
func containsAny(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	for _, f := range fields {
		if f != "" && strings.Contains(Fold(f), term) {
			return true
		}
	}
	return false
}

func statusMatches(actual, wanted string) bool {
	if wanted == "" || wanted == StatusAll {
		return true
	}
	return actual == wanted
}

// Apply devuelve los elementos que cumplen pred, preservando el orden.
// Nunca devuelve nil (serializa como [] en JSON).
func Apply[T any](items []T, pred func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

// Page recorta items a la ventana [offset, offset+limit).
func Page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// LeadFilter criterios de búsqueda del pipeline.
type LeadFilter struct {
	Search   string
	Status   string
	SellerID string
	Source   string
}

// MatchLead busca en nombre, email, teléfono y documento.
func MatchLead(l *entity.Lead, f LeadFilter) bool {
	if l == nil {
		return false
	}
	if !statusMatches(string(l.Status), f.Status) {
		return false
	}
	if f.SellerID != "" && l.SellerID != f.SellerID {
		return false
	}
	if f.Source != "" && !strings.EqualFold(l.Source, f.Source) {
		return false
	}
	return containsAny(Fold(f.Search), l.Name, l.Email, l.Phone, l.Document)
}

// ClientFilter criterios de búsqueda de clientes.
type ClientFilter struct {
	Search string
	State  string
}

// MatchClient busca en nombre, email, teléfono, documento y ciudad.
func MatchClient(c *entity.Client, f ClientFilter) bool {
	if c == nil {
		return false
	}
	if f.State != "" && !strings.EqualFold(c.State, f.State) {
		return false
	}
	return containsAny(Fold(f.Search), c.Name, c.Email, c.Phone, c.Document, c.City)
}

// SaleFilter criterios de búsqueda de ventas.
type SaleFilter struct {
	Search string
	Status string
}

// MatchSale busca en id, método de pago y nombre del titular; clientName
// llega aparte porque no vive en la fila de la venta.
func MatchSale(s *entity.Sale, clientName string, f SaleFilter) bool {
	if s == nil {
		return false
	}
	if !statusMatches(string(s.Status), f.Status) {
		return false
	}
	return containsAny(Fold(f.Search), s.ID, s.PaymentMethod, clientName)
}

// CommissionFilter criterios de búsqueda de comisiones.
type CommissionFilter struct {
	Search   string
	Status   string
	SellerID string
}

// MatchCommission busca en id de venta y nombre del vendedor (si se conoce).
func MatchCommission(c *entity.Commission, sellerName string, f CommissionFilter) bool {
	if c == nil {
		return false
	}
	if !statusMatches(string(c.Status), f.Status) {
		return false
	}
	if f.SellerID != "" && c.SellerID != f.SellerID {
		return false
	}
	return containsAny(Fold(f.Search), c.SaleID, sellerName)
}

// AuditLogFilter criterios de búsqueda del registro de auditoría.
type AuditLogFilter struct {
	Search     string
	Action     string
	EntityType string
}

// MatchAuditLog busca en acción, tipo y id de entidad y usuario.
func MatchAuditLog(a *entity.AuditLog, f AuditLogFilter) bool {
	if a == nil {
		return false
	}
	if f.Action != "" && f.Action != StatusAll && a.Action != f.Action {
		return false
	}
	if f.EntityType != "" && a.EntityType != f.EntityType {
		return false
	}
	return containsAny(Fold(f.Search), a.Action, a.EntityType, a.EntityID, a.UserID)
}
