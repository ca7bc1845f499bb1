// Package policy implementa la función emit-policy: emite la póliza de una
// venta pagada. Es idempotente por venta: una segunda invocación devuelve la
// póliza existente.
package policy

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

const numberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // sin 0/O ni 1/I

// EmitPolicyUseCase emite pólizas a partir de ventas.
type EmitPolicyUseCase struct {
	sales     repository.SaleRepository
	products  repository.ProductRepository
	policies  repository.PolicyRepository
	publisher ports.RealtimePublisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewEmitPolicyUseCase construye el caso de uso. publisher puede ser nil.
func NewEmitPolicyUseCase(
	sales repository.SaleRepository,
	products repository.ProductRepository,
	policies repository.PolicyRepository,
	publisher ports.RealtimePublisher,
	log zerolog.Logger,
) *EmitPolicyUseCase {
	return &EmitPolicyUseCase{
		sales:     sales,
		products:  products,
		policies:  policies,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Emit crea la póliza de saleID (solo ventas pagadas): estado active, vigencia de un año desde hoy,
// prima = monto de la venta.
//
// Retorna:
//   - domain.ErrSaleNotFound si la venta no existe.
//   - domain.ErrConflict     si la venta no está pagada.
//   - domain.ErrNotFound     si el producto de la venta no existe.
func (uc *EmitPolicyUseCase) Emit(ctx context.Context, saleID string) (*dto.EmitPolicyResponse, error) {
	if saleID == "" {
		return nil, fmt.Errorf("%w: sale_id es obligatorio", domain.ErrInvalidInput)
	}
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("emit-policy: obtener venta: %w", err)
	}
	if sale == nil {
		return nil, domain.ErrSaleNotFound
	}
	if sale.Status != entity.SaleStatusPaid {
		return nil, fmt.Errorf("%w: la venta está %s", domain.ErrConflict, sale.Status)
	}

	existing, err := uc.policies.GetBySaleID(ctx, sale.ID)
	if err != nil {
		return nil, fmt.Errorf("emit-policy: buscar póliza: %w", err)
	}
	if existing != nil {
		return &dto.EmitPolicyResponse{PolicyID: existing.ID, PolicyNumber: existing.Number}, nil
	}

	product, err := uc.products.GetByID(ctx, sale.ProductID)
	if err != nil {
		return nil, fmt.Errorf("emit-policy: obtener producto: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, sale.ProductID)
	}

	now := uc.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	number, err := NewPolicyNumber(now)
	if err != nil {
		return nil, err
	}
	p := &entity.Policy{
		ID:        uuid.New().String(),
		Number:    number,
		SaleID:    sale.ID,
		ClientID:  sale.ClientID,
		ProductID: product.ID,
		Status:    entity.PolicyStatusActive,
		Premium:   sale.Amount,
		StartDate: start,
		EndDate:   start.AddDate(1, 0, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.policies.Create(ctx, p); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// Carrera con otra invocación para la misma venta.
			if winner, gErr := uc.policies.GetBySaleID(ctx, sale.ID); gErr == nil && winner != nil {
				return &dto.EmitPolicyResponse{PolicyID: winner.ID, PolicyNumber: winner.Number}, nil
			}
		}
		return nil, fmt.Errorf("emit-policy: crear póliza: %w", err)
	}

	uc.log.Info().Str("sale_id", sale.ID).Str("policy_number", p.Number).Msg("póliza emitida")
	if uc.publisher != nil {
		_ = uc.publisher.Publish(ctx, ports.RealtimeEvent{
			Channel: ports.TableChannel("policies"),
			Type:    ports.EventInsert,
			Table:   "policies",
			ID:      p.ID,
			At:      now,
		})
	}
	return &dto.EmitPolicyResponse{PolicyID: p.ID, PolicyNumber: p.Number, Created: true}, nil
}

// Handle adapta Emit a la firma de función in-process.
func (uc *EmitPolicyUseCase) Handle(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	var in dto.EmitPolicyRequest
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, fmt.Errorf("%w: cuerpo inválido", domain.ErrInvalidInput)
	}
	out, err := uc.Emit(ctx, in.SaleID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// NewPolicyNumber genera un número POL-YYYYMMDD-XXXXXX.
func NewPolicyNumber(at time.Time) (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generar número de póliza: %w", err)
	}
	for i, b := range buf {
		buf[i] = numberAlphabet[int(b)%len(numberAlphabet)]
	}
	return fmt.Sprintf("POL-%s-%s", at.UTC().Format("20060102"), buf), nil
}
