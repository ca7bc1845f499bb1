// Package welcomekit implementa la función generate-welcome-kit: renderiza el
// PDF de bienvenida de la póliza, lo guarda en object storage y avisa al
// vendedor.
package welcomekit

import (
	"context"
	"encoding/json"
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

// Deps dependencias del caso de uso.
type Deps struct {
	Sales         repository.SaleRepository
	Policies      repository.PolicyRepository
	Clients       repository.ClientRepository
	Products      repository.ProductRepository
	Users         repository.UserRepository
	Notifications repository.NotificationRepository
	PDF           ports.WelcomeKitPDFGenerator
	Storage       ports.ObjectStorage
	Publisher     ports.RealtimePublisher // opcional
}

// UseCase genera kits de bienvenida.
type UseCase struct {
	deps Deps
	log  zerolog.Logger
	now  func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(deps Deps, log zerolog.Logger) *UseCase {
	return &UseCase{deps: deps, log: log, now: time.Now}
}

// StorageKey clave del PDF en object storage.
func StorageKey(policyNumber string) string {
	return "welcome-kits/" + policyNumber + ".pdf"
}

// Generate produce el kit de la póliza de saleID. Si la póliza ya tiene kit
// devuelve la clave existente sin regenerarlo.
func (uc *UseCase) Generate(ctx context.Context, saleID string) (*dto.GenerateWelcomeKitResponse, error) {
	if saleID == "" {
		return nil, fmt.Errorf("%w: sale_id es obligatorio", domain.ErrInvalidInput)
	}
	sale, err := uc.deps.Sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("welcome-kit: obtener venta: %w", err)
	}
	if sale == nil {
		return nil, domain.ErrSaleNotFound
	}
	policy, err := uc.deps.Policies.GetBySaleID(ctx, sale.ID)
	if err != nil {
		return nil, fmt.Errorf("welcome-kit: obtener póliza: %w", err)
	}
	if policy == nil {
		return nil, fmt.Errorf("%w: la venta %s no tiene póliza emitida", domain.ErrNotFound, sale.ID)
	}
	if policy.WelcomeKitKey != "" {
		return &dto.GenerateWelcomeKitResponse{PolicyID: policy.ID, StorageKey: policy.WelcomeKitKey}, nil
	}

	client, err := uc.deps.Clients.GetByID(ctx, policy.ClientID)
	if err != nil {
		return nil, fmt.Errorf("welcome-kit: obtener cliente: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, policy.ClientID)
	}
	product, err := uc.deps.Products.GetByID(ctx, policy.ProductID)
	if err != nil {
		return nil, fmt.Errorf("welcome-kit: obtener producto: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, policy.ProductID)
	}
	var seller *entity.User
	if sale.SellerID != "" {
		if seller, err = uc.deps.Users.GetByID(ctx, sale.SellerID); err != nil {
			return nil, fmt.Errorf("welcome-kit: obtener vendedor: %w", err)
		}
	}

	now := uc.now().UTC()
	doc, err := uc.deps.PDF.GenerateWelcomeKit(ctx, ports.WelcomeKitData{
		Policy: policy, Sale: sale, Client: client, Product: product, Seller: seller, IssuedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("welcome-kit: generar PDF: %w", err)
	}

	key := StorageKey(policy.Number)
	if err := uc.deps.Storage.Upload(ctx, key, "application/pdf", doc); err != nil {
		return nil, fmt.Errorf("welcome-kit: subir PDF: %w", err)
	}

	policy.WelcomeKitKey = key
	policy.WelcomeKitSent = &now
	policy.UpdatedAt = now
	if err := uc.deps.Policies.Update(ctx, policy); err != nil {
		return nil, fmt.Errorf("welcome-kit: actualizar póliza: %w", err)
	}

	if seller != nil {
		n := &entity.Notification{
			ID:        uuid.New().String(),
			UserID:    seller.ID,
			Type:      entity.NotificationSuccess,
			Title:     "Kit de bienvenida listo",
			Message:   fmt.Sprintf("La póliza %s de %s ya tiene su kit de bienvenida.", policy.Number, client.Name),
			Link:      "/policies/" + policy.ID,
			CreatedAt: now,
		}
		if err := uc.deps.Notifications.Create(ctx, n); err != nil {
			uc.log.Warn().Err(err).Str("policy_id", policy.ID).Msg("no se pudo notificar al vendedor")
		} else if uc.deps.Publisher != nil {
			_ = uc.deps.Publisher.Publish(ctx, ports.RealtimeEvent{
				Channel: ports.UserChannel(seller.ID),
				Type:    ports.EventNotification,
				Table:   "notifications",
				ID:      n.ID,
				Payload: n,
				At:      now,
			})
		}
	}

	uc.log.Info().Str("policy_number", policy.Number).Str("key", key).Int("bytes", len(doc)).Msg("kit de bienvenida generado")
	return &dto.GenerateWelcomeKitResponse{PolicyID: policy.ID, StorageKey: key}, nil
}

// Handle adapta Generate a la firma de función in-process.
func (uc *UseCase) Handle(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	var in dto.GenerateWelcomeKitRequest
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, fmt.Errorf("%w: cuerpo inválido", domain.ErrInvalidInput)
	}
	out, err := uc.Generate(ctx, in.SaleID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}
