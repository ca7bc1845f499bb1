// Package display traduce los enums de estado a etiquetas y colores para el
// dashboard. Todas las funciones son totales: cualquier valor fuera del enum
// recibe la etiqueta y el color de reserva.
package display

import "github.com/jhoicas/seguros-api/internal/domain/entity"

// Colores semánticos que entiende el frontend.
const (
	ColorGray   = "gray"
	ColorBlue   = "blue"
	ColorIndigo = "indigo"
	ColorPurple = "purple"
	ColorYellow = "yellow"
	ColorOrange = "orange"
	ColorGreen  = "green"
	ColorRed    = "red"
)

// FallbackLabel etiqueta para valores desconocidos.
const FallbackLabel = "Desconocido"

// Badge par etiqueta/color listo para serializar.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

type badgeMap[S ~string] map[S]Badge

func (m badgeMap[S]) get(s S) Badge {
	if b, ok := m[s]; ok {
		return b
	}
	return Badge{Label: FallbackLabel, Color: ColorGray}
}

var leadBadges = badgeMap[entity.LeadStatus]{
	entity.LeadStatusNew:             {"Nuevo", ColorBlue},
	entity.LeadStatusContacted:       {"Contactado", ColorIndigo},
	entity.LeadStatusQualified:       {"Calificado", ColorPurple},
	entity.LeadStatusProposal:        {"Propuesta enviada", ColorYellow},
	entity.LeadStatusNegotiation:     {"En negociación", ColorOrange},
	entity.LeadStatusAwaitingPayment: {"Esperando pago", ColorYellow},
	entity.LeadStatusPaid:            {"Pagado", ColorGreen},
	entity.LeadStatusLost:            {"Perdido", ColorRed},
}

var saleBadges = badgeMap[entity.SaleStatus]{
	entity.SaleStatusPending:   {"Pendiente", ColorYellow},
	entity.SaleStatusPaid:      {"Pagada", ColorGreen},
	entity.SaleStatusCancelled: {"Cancelada", ColorRed},
	entity.SaleStatusRefunded:  {"Reembolsada", ColorGray},
}

var paymentBadges = badgeMap[entity.PaymentStatus]{
	entity.PaymentStatusPending:  {"Pendiente", ColorYellow},
	entity.PaymentStatusPaid:     {"Pagado", ColorGreen},
	entity.PaymentStatusFailed:   {"Fallido", ColorRed},
	entity.PaymentStatusRefunded: {"Reembolsado", ColorGray},
}

var policyBadges = badgeMap[entity.PolicyStatus]{
	entity.PolicyStatusPendingEmission: {"Emisión pendiente", ColorYellow},
	entity.PolicyStatusActive:          {"Vigente", ColorGreen},
	entity.PolicyStatusCancelled:       {"Cancelada", ColorRed},
	entity.PolicyStatusExpired:         {"Vencida", ColorGray},
}

var commissionBadges = badgeMap[entity.CommissionStatus]{
	entity.CommissionStatusPending:   {"Pendiente", ColorYellow},
	entity.CommissionStatusApproved:  {"Aprobada", ColorBlue},
	entity.CommissionStatusPaid:      {"Pagada", ColorGreen},
	entity.CommissionStatusCancelled: {"Cancelada", ColorRed},
}

var campaignBadges = badgeMap[entity.CampaignStatus]{
	entity.CampaignStatusDraft:     {"Borrador", ColorGray},
	entity.CampaignStatusRunning:   {"En ejecución", ColorBlue},
	entity.CampaignStatusPaused:    {"Pausada", ColorOrange},
	entity.CampaignStatusCompleted: {"Finalizada", ColorGreen},
}

// LeadStatus etiqueta y color de un estado de lead.
func LeadStatus(s entity.LeadStatus) Badge { return leadBadges.get(s) }

// SaleStatus etiqueta y color de un estado de venta.
func SaleStatus(s entity.SaleStatus) Badge { return saleBadges.get(s) }

// PaymentStatus etiqueta y color de un estado de pago.
func PaymentStatus(s entity.PaymentStatus) Badge { return paymentBadges.get(s) }

// PolicyStatus etiqueta y color de un estado de póliza.
func PolicyStatus(s entity.PolicyStatus) Badge { return policyBadges.get(s) }

// CommissionStatus etiqueta y color de un estado de comisión.
func CommissionStatus(s entity.CommissionStatus) Badge { return commissionBadges.get(s) }

// CampaignStatus etiqueta y color de un estado de campaña.
func CampaignStatus(s entity.CampaignStatus) Badge { return campaignBadges.get(s) }
