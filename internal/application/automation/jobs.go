package automation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
)

// Payloads persistidos en automation_jobs.payload.

type leadClosurePayload struct {
	LeadID   string `json:"lead_id"`
	SaleID   string `json:"sale_id,omitempty"`
	SellerID string `json:"seller_id,omitempty"`
	ActorID  string `json:"actor_id,omitempty"`
}

type welcomeKitPayload struct {
	LeadID   string `json:"lead_id"`
	SaleID   string `json:"sale_id"`
	SellerID string `json:"seller_id,omitempty"`
}

// RecoveryPayload destinatario de un envío de campaña.
type RecoveryPayload struct {
	CampaignID string `json:"campaign_id"`
	LeadID     string `json:"lead_id"`
	SellerID   string `json:"seller_id,omitempty"`
	Channel    string `json:"channel"`
	To         string `json:"to"`
	Message    string `json:"message"`
}

// LeadClosureKey clave de idempotencia de la cadena de cierre de un lead.
func LeadClosureKey(leadID string) string { return "lead-closure:" + leadID }

// WelcomeKitKey clave de idempotencia del kit de bienvenida de una venta.
func WelcomeKitKey(saleID string) string { return "welcome-kit:" + saleID }

// RecoveryKey clave de idempotencia de un envío de campaña.
func RecoveryKey(campaignID, leadID string) string {
	return "recovery:" + campaignID + ":" + leadID
}

// NewJob arma un job en estado queued.
func NewJob(kind entity.JobKind, key string, payload any, runAt time.Time, maxAttempts int) (*entity.AutomationJob, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializar payload %s: %w", kind, err)
	}
	now := time.Now().UTC()
	return &entity.AutomationJob{
		ID:             uuid.New().String(),
		Kind:           kind,
		IdempotencyKey: key,
		Payload:        raw,
		Status:         entity.JobStatusQueued,
		MaxAttempts:    maxAttempts,
		RunAt:          runAt.UTC(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
