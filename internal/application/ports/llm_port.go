package ports

import (
	"context"

	"github.com/jhoicas/seguros-api/internal/application/dto"
)

// LLMService define el puerto de salida para los servicios de inteligencia artificial.
// Cualquier adaptador (Anthropic, mock) debe implementar esta interfaz; la
// aplicación solo conoce este contrato, no la implementación concreta.
type LLMService interface {
	// ScoreLead analiza los datos del lead y devuelve un puntaje de 0 a 100,
	// la temperatura (hot/warm/cold) y la siguiente acción sugerida.
	// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
	ScoreLead(ctx context.Context, in dto.LeadScoringRequest) (*dto.LeadScoreDTO, error)
}
