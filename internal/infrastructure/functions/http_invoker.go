// Package functions implementa la invocación de funciones nombradas: remota
// por HTTP, local (in-process) y un router que elige entre ambas.
package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appfn "github.com/jhoicas/seguros-api/internal/application/functions"
	"github.com/jhoicas/seguros-api/internal/application/ports"
)

const maxResponseBytes = 4 << 20

var _ ports.FunctionInvoker = (*HTTPInvoker)(nil)

// HTTPInvoker invoca funciones remotas con POST <baseURL>/<name>.
type HTTPInvoker struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

// NewHTTPInvoker construye el invocador. timeout <= 0 usa 30s.
func NewHTTPInvoker(baseURL, serviceKey string, timeout time.Duration) *HTTPInvoker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPInvoker{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: timeout},
	}
}

// Invoke implementa ports.FunctionInvoker. Las respuestas 2xx se devuelven
// tal cual; el resto se traduce a *appfn.FunctionError con su clasificación.
func (h *HTTPInvoker) Invoke(ctx context.Context, name string, payload json.RawMessage, idempotencyKey string) (json.RawMessage, error) {
	if h.baseURL == "" {
		return nil, fmt.Errorf("%w: %s (FUNCTIONS_BASE_URL vacío)", appfn.ErrFunctionUnavailable, name)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/"+name, bytes.NewReader(payload))
	if err != nil {
		return nil, appfn.Permanent(name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.serviceKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.serviceKey)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		// Red o timeout: se reintenta.
		return nil, &appfn.FunctionError{Name: name, Message: "sin respuesta", Transient: true, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &appfn.FunctionError{Name: name, Status: resp.StatusCode, Message: "respuesta incompleta", Transient: true, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, appfn.NewStatusError(name, resp.StatusCode, errorMessage(body))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return json.RawMessage(`{}`), nil
	}
	if !json.Valid(body) {
		return nil, appfn.Permanent(name, fmt.Errorf("respuesta no es JSON"))
	}
	return body, nil
}

// errorMessage extrae {"error": "..."} o {"message": "..."}; si no, el cuerpo recortado.
func errorMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return msg
}
