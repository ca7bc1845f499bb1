package ports

import (
	"context"
	"encoding/json"
)

// FunctionInvoker invoca una función de negocio por nombre con un cuerpo JSON
// y devuelve su respuesta JSON. idempotencyKey puede ser vacío.
type FunctionInvoker interface {
	Invoke(ctx context.Context, name string, payload json.RawMessage, idempotencyKey string) (json.RawMessage, error)
}

// FunctionHandler implementación in-process de una función.
type FunctionHandler func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
