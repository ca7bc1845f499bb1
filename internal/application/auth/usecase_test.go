package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/seguros-api/internal/application/auth"
	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/functions"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
	"github.com/jhoicas/seguros-api/internal/infrastructure/memory"
	"github.com/jhoicas/seguros-api/pkg/jwt"
)

// ── Helpers de test ───────────────────────────────────────────────────────────

type captureInvoker struct {
	name    string
	payload json.RawMessage
	fail    error
}

func (c *captureInvoker) Invoke(_ context.Context, name string, payload json.RawMessage, _ string) (json.RawMessage, error) {
	if c.fail != nil {
		return nil, c.fail
	}
	c.name = name
	c.payload = payload
	return json.RawMessage(`{}`), nil
}

const secret = "test-secret"

func newAuth(t *testing.T) (*auth.AuthUseCase, *memory.Store, *captureInvoker) {
	t.Helper()
	store := memory.NewStore()
	inv := &captureInvoker{}
	uc := auth.NewAuthUseCase(store.Users(), store.PasswordResets(), store.AuditLogs(), inv,
		auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "seguros-api"}, zerolog.Nop())
	return uc, store, inv
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestSignUp_CreaSellerActivo(t *testing.T) {
	uc, _, _ := newAuth(t)

	u, err := uc.SignUp(context.Background(), dto.SignUpRequest{Email: " Ana@Example.com ", Password: "clave-segura"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, entity.RoleSeller, u.Role)
	assert.Equal(t, entity.UserStatusActive, u.Status)

	_, err = uc.SignUp(context.Background(), dto.SignUpRequest{Email: "ana@example.com", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestSignIn_EmiteJWTConRol(t *testing.T) {
	uc, store, _ := newAuth(t)
	ctx := context.Background()
	_, err := uc.SignUp(ctx, dto.SignUpRequest{Email: "ana@example.com", Password: "clave-segura"})
	require.NoError(t, err)

	sess, err := uc.SignIn(ctx, dto.SignInRequest{Email: "ana@example.com", Password: "clave-segura"})
	require.NoError(t, err)

	userID, role, err := jwt.Parse(secret, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, userID)
	assert.Equal(t, entity.RoleSeller, role)

	u, _ := store.Users().GetByID(ctx, userID)
	assert.NotNil(t, u.LastLoginAt)

	logs, _ := store.AuditLogs().List(ctx, repository.AuditLogFilter{Action: "user.signed_in"})
	assert.Len(t, logs, 1)
}

func TestSignIn_CredencialesInvalidas(t *testing.T) {
	uc, _, _ := newAuth(t)
	ctx := context.Background()
	_, err := uc.SignUp(ctx, dto.SignUpRequest{Email: "ana@example.com", Password: "clave-segura"})
	require.NoError(t, err)

	_, err = uc.SignIn(ctx, dto.SignInRequest{Email: "ana@example.com", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.SignIn(ctx, dto.SignInRequest{Email: "nadie@example.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSignIn_UsuarioSuspendido(t *testing.T) {
	uc, store, _ := newAuth(t)
	ctx := context.Background()
	u, err := uc.SignUp(ctx, dto.SignUpRequest{Email: "ana@example.com", Password: "clave-segura"})
	require.NoError(t, err)

	ent, _ := store.Users().GetByID(ctx, u.ID)
	ent.Status = entity.UserStatusSuspended
	require.NoError(t, store.Users().Update(ctx, ent))

	_, err = uc.SignIn(ctx, dto.SignInRequest{Email: "ana@example.com", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = uc.Session(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestPasswordReset_FlujoCompletoYUnSoloUso(t *testing.T) {
	uc, _, inv := newAuth(t)
	ctx := context.Background()
	_, err := uc.SignUp(ctx, dto.SignUpRequest{Email: "ana@example.com", Password: "clave-vieja"})
	require.NoError(t, err)

	require.NoError(t, uc.RequestPasswordReset(ctx, dto.PasswordResetRequest{Email: "ana@example.com"}))
	assert.Equal(t, functions.SendPasswordReset, inv.name)

	var msg dto.PasswordResetMessage
	require.NoError(t, json.Unmarshal(inv.payload, &msg))
	require.NotEmpty(t, msg.Token)

	require.NoError(t, uc.ConfirmPasswordReset(ctx, dto.PasswordResetConfirmRequest{Token: msg.Token, Password: "clave-nueva"}))

	_, err = uc.SignIn(ctx, dto.SignInRequest{Email: "ana@example.com", Password: "clave-nueva"})
	require.NoError(t, err)
	_, err = uc.SignIn(ctx, dto.SignInRequest{Email: "ana@example.com", Password: "clave-vieja"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	err = uc.ConfirmPasswordReset(ctx, dto.PasswordResetConfirmRequest{Token: msg.Token, Password: "otra-mas"})
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestPasswordReset_EmailDesconocidoNoFalla(t *testing.T) {
	uc, _, inv := newAuth(t)
	require.NoError(t, uc.RequestPasswordReset(context.Background(), dto.PasswordResetRequest{Email: "nadie@example.com"}))
	assert.Empty(t, inv.name)
}

func TestPasswordReset_FalloDeEntregaNoSeDistingueDeEmailDesconocido(t *testing.T) {
	uc, _, inv := newAuth(t)
	ctx := context.Background()
	_, err := uc.SignUp(ctx, dto.SignUpRequest{Email: "ana@example.com", Password: "clave-vieja"})
	require.NoError(t, err)
	inv.fail = errors.New("smtp caído")

	require.NoError(t, uc.RequestPasswordReset(ctx, dto.PasswordResetRequest{Email: "ana@example.com"}))
	require.NoError(t, uc.RequestPasswordReset(ctx, dto.PasswordResetRequest{Email: "nadie@example.com"}))
	assert.Empty(t, inv.name)

	// Un nuevo pedido emite otro token y lo entrega.
	inv.fail = nil
	require.NoError(t, uc.RequestPasswordReset(ctx, dto.PasswordResetRequest{Email: "ana@example.com"}))
	assert.Equal(t, functions.SendPasswordReset, inv.name)
}

func TestPasswordReset_TokenInvalido(t *testing.T) {
	uc, _, _ := newAuth(t)
	err := uc.ConfirmPasswordReset(context.Background(), dto.PasswordResetConfirmRequest{Token: "0123456789abcdef0123", Password: "clave-nueva"})
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestTranslateError(t *testing.T) {
	assert.Equal(t, "Email o contraseña incorrectos.", auth.TranslateError(domain.ErrUnauthorized))
	assert.Equal(t, "Email o contraseña incorrectos.", auth.TranslateError(errors.New("Invalid login credentials")))
	assert.Equal(t, "Este email ya está registrado.", auth.TranslateError(domain.ErrEmailAlreadyExists))
	assert.Equal(t, auth.GenericErrorMessage, auth.TranslateError(errors.New("algo raro")))
	assert.Empty(t, auth.TranslateError(nil))
}
