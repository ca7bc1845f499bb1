package ports

import (
	"context"
	"time"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
)

// WelcomeKitData datos ya cargados para renderizar el kit de bienvenida.
type WelcomeKitData struct {
	Policy   *entity.Policy
	Sale     *entity.Sale
	Client   *entity.Client
	Product  *entity.Product
	Seller   *entity.User // puede ser nil
	IssuedAt time.Time
}

// WelcomeKitPDFGenerator genera el PDF del kit de bienvenida.
type WelcomeKitPDFGenerator interface {
	GenerateWelcomeKit(ctx context.Context, data WelcomeKitData) ([]byte, error)
}
