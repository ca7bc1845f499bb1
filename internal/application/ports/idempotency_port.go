package ports

import (
	"context"
	"time"
)

// IdempotencyStore guarda la respuesta de una invocación por clave de idempotencia.
type IdempotencyStore interface {
	// Get devuelve (valor, true) si la clave existe y no expiró.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
