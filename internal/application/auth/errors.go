package auth

import (
	"errors"
	"strings"

	"github.com/jhoicas/seguros-api/internal/domain"
)

// GenericErrorMessage mensaje cuando el error no está en la tabla.
const GenericErrorMessage = "Ocurrió un error inesperado. Intenta nuevamente."

// authMessages traduce los mensajes de error de autenticación conocidos,
// incluidos los que devolvía el proveedor de auth anterior.
var authMessages = map[string]string{
	"invalid login credentials":                               "Email o contraseña incorrectos.",
	"email not confirmed":                                     "Confirma tu email antes de iniciar sesión.",
	"user already registered":                                 "Este email ya está registrado.",
	"password should be at least 6 characters":                "La contraseña debe tener al menos 6 caracteres.",
	"password should be at least 8 characters":                "La contraseña debe tener al menos 8 caracteres.",
	"unable to validate email address: invalid format":        "El formato del email no es válido.",
	"email rate limit exceeded":                               "Demasiados intentos. Espera unos minutos e intenta nuevamente.",
	"token has expired or is invalid":                         "El enlace expiró o ya fue utilizado. Solicita uno nuevo.",
	"user not found":                                          "Usuario no encontrado.",
	"signup is disabled":                                      "El registro de nuevos usuarios está deshabilitado.",
	"new password should be different from the old password.": "La nueva contraseña debe ser diferente de la anterior.",
}

// TranslateError devuelve el mensaje para mostrar al usuario.
func TranslateError(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return authMessages["invalid login credentials"]
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return authMessages["user already registered"]
	case errors.Is(err, domain.ErrTokenExpired):
		return authMessages["token has expired or is invalid"]
	case errors.Is(err, domain.ErrUserNotFound):
		return authMessages["user not found"]
	case errors.Is(err, domain.ErrForbidden):
		return "Tu cuenta no está activa. Contacta a un administrador."
	}
	return TranslateMessage(err.Error())
}

// TranslateMessage traduce un mensaje crudo; si no está en la tabla devuelve
// GenericErrorMessage.
func TranslateMessage(msg string) string {
	if m, ok := authMessages[strings.ToLower(strings.TrimSpace(msg))]; ok {
		return m
	}
	return GenericErrorMessage
}
