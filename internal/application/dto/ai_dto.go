package dto

import "github.com/shopspring/decimal"

// LeadScoringRequest datos que recibe ai-processor para puntuar un lead.
// Si LeadID viene informado, el resto se completa desde la base.
type LeadScoringRequest struct {
	LeadID         string          `json:"lead_id"`
	Name           string          `json:"name"`
	Source         string          `json:"source"`
	Status         string          `json:"status"`
	ProductName    string          `json:"product_name"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	Notes          string          `json:"notes"`
}

// LeadScoreDTO respuesta de ai-processor.
type LeadScoreDTO struct {
	Score       int    `json:"score"`       // 0–100
	Temperature string `json:"temperature"` // hot | warm | cold
	NextAction  string `json:"next_action"`
	Reasoning   string `json:"reasoning"`
}
