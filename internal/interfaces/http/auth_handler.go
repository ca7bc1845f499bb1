package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/seguros-api/internal/application/auth"
	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/domain"
)

// AuthHandler maneja registro, login, sesión y redefinición de contraseña.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// SignUp godoc
// @Summary      Registrar usuario
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignUpRequest  true  "email, password, name"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/signup [post]
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var in dto.SignUpRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	user, err := h.uc.SignUp(c.Context(), in)
	if err != nil {
		return authError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// SignIn godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignInRequest  true  "email, password"
// @Success      200   {object}  dto.SessionResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/signin [post]
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var in dto.SignInRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.SignIn(c.Context(), in)
	if err != nil {
		return authError(c, err)
	}
	return c.JSON(out)
}

// Session godoc
// @Summary      Usuario de la sesión actual
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UserResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/session [get]
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	out, err := h.uc.Session(c.Context(), GetUserID(c))
	if err != nil {
		return authError(c, err)
	}
	return c.JSON(out)
}

// RequestPasswordReset godoc
// @Summary      Solicitar redefinición de contraseña
// @Description  Responde 202 exista o no el email.
// @Tags         auth
// @Accept       json
// @Param        body  body  dto.PasswordResetRequest  true  "email"
// @Success      202
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var in dto.PasswordResetRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	if err := h.uc.RequestPasswordReset(c.Context(), in); err != nil {
		return authError(c, err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

// ConfirmPasswordReset godoc
// @Summary      Definir nueva contraseña con el token recibido
// @Tags         auth
// @Accept       json
// @Param        body  body  dto.PasswordResetConfirmRequest  true  "token, password"
// @Success      204
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/password-reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var in dto.PasswordResetConfirmRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	if err := h.uc.ConfirmPasswordReset(c.Context(), in); err != nil {
		return authError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// authError usa la tabla de traducción para el mensaje visible.
func authError(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		// Sin enumeración de cuentas: usuario inexistente == credenciales inválidas.
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		code = "EMAIL_EXISTS"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: auth.TranslateError(err)})
}
