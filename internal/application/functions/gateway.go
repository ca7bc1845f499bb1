package functions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/domain"
)

// DefaultCacheTTL tiempo que se conserva la respuesta de una clave de idempotencia.
const DefaultCacheTTL = 24 * time.Hour

var _ ports.FunctionInvoker = (*Gateway)(nil)

// Gateway punto único de invocación de funciones. Valida el nombre contra la
// allowlist y, si la llamada trae clave de idempotencia, devuelve la respuesta
// guardada en lugar de repetir la invocación.
type Gateway struct {
	invoker ports.FunctionInvoker
	store   ports.IdempotencyStore // nil = sin caché
	ttl     time.Duration
	log     zerolog.Logger
}

// NewGateway construye el gateway. store puede ser nil.
func NewGateway(invoker ports.FunctionInvoker, store ports.IdempotencyStore, ttl time.Duration, log zerolog.Logger) *Gateway {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Gateway{invoker: invoker, store: store, ttl: ttl, log: log}
}

// Invoke ejecuta la función name con payload.
func (g *Gateway) Invoke(ctx context.Context, name string, payload json.RawMessage, idempotencyKey string) (json.RawMessage, error) {
	if !Known(name) {
		return nil, fmt.Errorf("%w: %s", domain.ErrFunctionUnknown, name)
	}
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	cacheKey := ""
	if idempotencyKey != "" && g.store != nil {
		cacheKey = name + ":" + idempotencyKey
		cached, ok, err := g.store.Get(ctx, cacheKey)
		if err != nil {
			// La caché es una optimización: si falla se invoca igual.
			g.log.Warn().Err(err).Str("function", name).Msg("idempotency store no disponible")
		} else if ok {
			g.log.Debug().Str("function", name).Str("key", idempotencyKey).Msg("respuesta desde caché de idempotencia")
			return cached, nil
		}
	}

	start := time.Now()
	out, err := g.invoker.Invoke(ctx, name, payload, idempotencyKey)
	elapsed := time.Since(start)
	if err != nil {
		g.log.Warn().Err(err).Str("function", name).Dur("elapsed", elapsed).Bool("transient", IsTransient(err)).Msg("invocación fallida")
		return nil, err
	}
	g.log.Info().Str("function", name).Dur("elapsed", elapsed).Msg("función invocada")

	if cacheKey != "" {
		if err := g.store.Set(ctx, cacheKey, out, g.ttl); err != nil {
			g.log.Warn().Err(err).Str("function", name).Msg("no se pudo guardar la respuesta en caché")
		}
	}
	return out, nil
}
