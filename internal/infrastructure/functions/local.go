package functions

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	appfn "github.com/jhoicas/seguros-api/internal/application/functions"
	"github.com/jhoicas/seguros-api/internal/application/ports"
)

var _ ports.FunctionInvoker = (*LocalRegistry)(nil)

// LocalRegistry funciones implementadas dentro del proceso.
type LocalRegistry struct {
	mu       sync.RWMutex
	handlers map[string]ports.FunctionHandler
}

// NewLocalRegistry crea un registro vacío.
func NewLocalRegistry() *LocalRegistry {
	return &LocalRegistry{handlers: map[string]ports.FunctionHandler{}}
}

// Register asocia name a h; reemplaza un registro previo.
func (r *LocalRegistry) Register(name string, h ports.FunctionHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Has informa si name tiene handler local.
func (r *LocalRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[name]
	return ok
}

// Names devuelve los nombres registrados, ordenados.
func (r *LocalRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for n := range r.handlers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Invoke ejecuta el handler local. La clave de idempotencia no se usa aquí:
// los handlers son idempotentes por sí mismos y el gateway cachea respuestas.
func (r *LocalRegistry) Invoke(ctx context.Context, name string, payload json.RawMessage, _ string) (json.RawMessage, error) {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", appfn.ErrFunctionUnavailable, name)
	}
	return h(ctx, payload)
}
