package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeadStatus etapa del funil de ventas.
type LeadStatus string

// Estados válidos de Lead, en orden de avance del funil.
const (
	LeadStatusNew             LeadStatus = "new"
	LeadStatusContacted       LeadStatus = "contacted"
	LeadStatusQualified       LeadStatus = "qualified"
	LeadStatusProposal        LeadStatus = "proposal"
	LeadStatusNegotiation     LeadStatus = "negotiation"
	LeadStatusAwaitingPayment LeadStatus = "awaiting_payment"
	LeadStatusPaid            LeadStatus = "paid"
	LeadStatusLost            LeadStatus = "lost"
)

// LeadStatuses devuelve todos los estados declarados (orden del funil).
func LeadStatuses() []LeadStatus {
	return []LeadStatus{
		LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusProposal,
		LeadStatusNegotiation, LeadStatusAwaitingPayment, LeadStatusPaid, LeadStatusLost,
	}
}

// Valid informa si el estado pertenece al enum.
func (s LeadStatus) Valid() bool {
	return s.rank() >= 0
}

func (s LeadStatus) rank() int {
	for i, v := range LeadStatuses() {
		if v == s {
			return i
		}
	}
	return -1
}

// CanTransitionTo aplica las reglas del funil:
//   - avanzar es libre (no se puede retroceder salvo lost → new);
//   - lost es alcanzable desde cualquier estado no terminal;
//   - paid es terminal.
func (s LeadStatus) CanTransitionTo(to LeadStatus) bool {
	if !s.Valid() || !to.Valid() || s == to {
		return false
	}
	switch s {
	case LeadStatusPaid:
		return false
	case LeadStatusLost:
		return to == LeadStatusNew
	}
	if to == LeadStatusLost {
		return true
	}
	return to.rank() > s.rank()
}

// Lead prospecto de cliente seguido a lo largo del funil.
type Lead struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	Document       string // documento de identidad (CC, NIT, pasaporte)
	Source         string // whatsapp, web, referido, campaña…
	Status         LeadStatus
	ProductID      string // producto de interés (opcional)
	SellerID       string // vendedor responsable (opcional)
	EstimatedValue decimal.Decimal
	Notes          string
	LostReason     string
	ClosedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
