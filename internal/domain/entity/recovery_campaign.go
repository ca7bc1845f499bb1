package entity

import "time"

// CampaignStatus estado de una campaña de recuperación.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusRunning   CampaignStatus = "running"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
)

// CampaignStatuses devuelve todos los estados declarados.
func CampaignStatuses() []CampaignStatus {
	return []CampaignStatus{CampaignStatusDraft, CampaignStatusRunning, CampaignStatusPaused, CampaignStatusCompleted}
}

// RecoveryCampaign campaña de mensajes para recuperar leads perdidos
// o con pago pendiente.
type RecoveryCampaign struct {
	ID              string
	Name            string
	Channel         string       // whatsapp | email | sms
	TargetStatuses  []LeadStatus // estados de lead que reciben el mensaje
	MessageTemplate string
	Status          CampaignStatus
	TargetCount     int
	SentCount       int
	FailedCount     int
	RecoveredCount  int
	CreatedBy       string
	StartedAt       *time.Time
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
