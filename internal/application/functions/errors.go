package functions

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jhoicas/seguros-api/internal/domain"
)

// ErrFunctionUnavailable no hay handler local ni endpoint remoto para la función.
var ErrFunctionUnavailable = errors.New("función no disponible")

// FunctionError error devuelto por una función (local o remota).
// Status es el código HTTP de la respuesta remota; 0 si no hubo respuesta.
type FunctionError struct {
	Name      string
	Status    int
	Message   string
	Transient bool
	Err       error
}

func (e *FunctionError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("función %s: HTTP %d: %s", e.Name, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("función %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("función %s: %s", e.Name, e.Message)
}

func (e *FunctionError) Unwrap() error { return e.Err }

// NewStatusError construye el error de una respuesta HTTP no exitosa.
// 408, 425, 429 y 5xx son transitorios; el resto de 4xx es permanente.
func NewStatusError(name string, status int, message string) *FunctionError {
	return &FunctionError{
		Name:      name,
		Status:    status,
		Message:   message,
		Transient: transientStatus(status),
	}
}

// Permanent envuelve err como fallo no reintentable.
func Permanent(name string, err error) *FunctionError {
	return &FunctionError{Name: name, Err: err, Message: err.Error()}
}

func transientStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return true
	}
	return status >= 500
}

// IsTransient informa si err merece un reintento. Errores sin clasificar
// (red, timeouts del contexto) se consideran transitorios; los errores de
// dominio y la cancelación no.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var fe *FunctionError
	if errors.As(err, &fe) {
		return fe.Transient
	}
	switch {
	case errors.Is(err, ErrFunctionUnavailable), errors.Is(err, context.Canceled),
		errors.Is(err, domain.ErrFunctionUnknown), errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrSaleNotFound), errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrConflict):
		return false
	}
	return true
}
