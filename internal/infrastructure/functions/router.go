package functions

import (
	"context"
	"encoding/json"
	"fmt"

	appfn "github.com/jhoicas/seguros-api/internal/application/functions"
	"github.com/jhoicas/seguros-api/internal/application/ports"
)

var _ ports.FunctionInvoker = (*Router)(nil)

// Router resuelve primero en el registro local y, si no hay handler, en el
// invocador remoto. remote puede ser nil (solo funciones locales).
type Router struct {
	local  *LocalRegistry
	remote ports.FunctionInvoker
}

// NewRouter construye el router.
func NewRouter(local *LocalRegistry, remote ports.FunctionInvoker) *Router {
	return &Router{local: local, remote: remote}
}

// Invoke implementa ports.FunctionInvoker.
func (r *Router) Invoke(ctx context.Context, name string, payload json.RawMessage, idempotencyKey string) (json.RawMessage, error) {
	if r.local != nil && r.local.Has(name) {
		return r.local.Invoke(ctx, name, payload, idempotencyKey)
	}
	if r.remote == nil {
		return nil, fmt.Errorf("%w: %s", appfn.ErrFunctionUnavailable, name)
	}
	return r.remote.Invoke(ctx, name, payload, idempotencyKey)
}
