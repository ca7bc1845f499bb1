// Package aiprocessor implementa la función ai-processor: puntuación de leads
// asistida por un LLM.
package aiprocessor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// callTimeout límite de cada llamada al LLM.
const callTimeout = 10 * time.Second

// UseCase orquesta la puntuación de leads. Aplica un timeout de 10 segundos en
// cada llamada al LLM para que las latencias externas no bloqueen el servidor.
type UseCase struct {
	llm      ports.LLMService
	leads    repository.LeadRepository
	products repository.ProductRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(llm ports.LLMService, leads repository.LeadRepository, products repository.ProductRepository) *UseCase {
	return &UseCase{llm: llm, leads: leads, products: products}
}

// ScoreLead completa los datos desde la base cuando viene LeadID y delega al LLM.
func (uc *UseCase) ScoreLead(ctx context.Context, req dto.LeadScoringRequest) (*dto.LeadScoreDTO, error) {
	if req.LeadID != "" {
		lead, err := uc.leads.GetByID(ctx, req.LeadID)
		if err != nil {
			return nil, fmt.Errorf("ai-processor: obtener lead: %w", err)
		}
		if lead == nil {
			return nil, fmt.Errorf("%w: lead %s", domain.ErrNotFound, req.LeadID)
		}
		req.Name = lead.Name
		req.Source = lead.Source
		req.Status = string(lead.Status)
		req.EstimatedValue = lead.EstimatedValue
		req.Notes = lead.Notes
		if lead.ProductID != "" && uc.products != nil {
			if p, err := uc.products.GetByID(ctx, lead.ProductID); err == nil && p != nil {
				req.ProductName = p.Name
			}
		}
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: lead_id o name es obligatorio", domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	result, err := uc.llm.ScoreLead(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("puntuación IA: %w", err)
	}
	return result, nil
}

// Handle adapta ScoreLead a la firma de función in-process.
func (uc *UseCase) Handle(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	var in dto.LeadScoringRequest
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, fmt.Errorf("%w: cuerpo inválido", domain.ErrInvalidInput)
	}
	out, err := uc.ScoreLead(ctx, in)
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}
