package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/functions"
	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
	"github.com/jhoicas/seguros-api/pkg/jwt"
)

// ResetTokenTTL vigencia de un token de redefinición de contraseña.
const ResetTokenTTL = time.Hour

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro, login, sesión y
// redefinición de contraseña.
type AuthUseCase struct {
	userRepo  repository.UserRepository
	resetRepo repository.PasswordResetRepository
	auditRepo repository.AuditLogRepository
	functions ports.FunctionInvoker
	jwtCfg    JWTConfig
	log       zerolog.Logger
	now       func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	auditRepo repository.AuditLogRepository,
	fn ports.FunctionInvoker,
	jwtCfg JWTConfig,
	log zerolog.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		auditRepo: auditRepo,
		functions: fn,
		jwtCfg:    jwtCfg,
		log:       log,
		now:       time.Now,
	}
}

// SignUp crea un usuario con rol seller: hashea password con bcrypt y persiste.
// Devuelve ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) SignUp(ctx context.Context, in dto.SignUpRequest) (*dto.UserResponse, error) {
	email := normalizeEmail(in.Email)
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	name := in.Name
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Phone:        in.Phone,
		Role:         entity.RoleSeller,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.audit(ctx, user.ID, "user.signed_up", user.ID)
	return ToUserResponse(user), nil
}

// SignIn verifica email/password, genera JWT y retorna token + usuario.
// Email inexistente y password incorrecto devuelven el mismo error.
func (uc *AuthUseCase) SignIn(ctx context.Context, in dto.SignInRequest) (*dto.SessionResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserStatusActive {
		return nil, domain.ErrForbidden
	}
	token, exp, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := uc.userRepo.Update(ctx, user); err != nil {
		uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("no se pudo registrar el último login")
	}
	uc.audit(ctx, user.ID, "user.signed_in", user.ID)
	return &dto.SessionResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      *ToUserResponse(user),
	}, nil
}

// Session devuelve el usuario autenticado (el JWT ya fue validado por el middleware).
func (uc *AuthUseCase) Session(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if user.Status == entity.UserStatusSuspended {
		return nil, domain.ErrForbidden
	}
	return ToUserResponse(user), nil
}

// RequestPasswordReset genera un token de un solo uso y lo entrega mediante la
// función send-password-reset. Si el email no existe no hace nada y no
// devuelve error, para no revelar qué cuentas existen. Por lo mismo, un fallo
// de entrega solo se registra en el log.
func (uc *AuthUseCase) RequestPasswordReset(ctx context.Context, in dto.PasswordResetRequest) error {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return err
	}
	if user == nil || user.Status == entity.UserStatusSuspended {
		return nil
	}

	token, resetID, err := uc.issueToken(ctx, user.ID, ResetTokenTTL)
	if err != nil {
		return err
	}

	body, _ := json.Marshal(dto.PasswordResetMessage{Email: user.Email, Name: user.Name, Token: token})
	if _, err := uc.functions.Invoke(ctx, functions.SendPasswordReset, body, "password-reset:"+resetID); err != nil {
		uc.log.Error().Err(err).Str("user_id", user.ID).Str("reset_id", resetID).Msg("no se pudo enviar el token de redefinición")
	}
	return nil
}

// IssueResetToken emite un token de un solo uso para userID con vigencia ttl.
// Se usa también para las invitaciones: el invitado define su contraseña con él.
func (uc *AuthUseCase) IssueResetToken(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	token, _, err := uc.issueToken(ctx, userID, ttl)
	return token, err
}

func (uc *AuthUseCase) issueToken(ctx context.Context, userID string, ttl time.Duration) (token, id string, err error) {
	token, err = newResetToken()
	if err != nil {
		return "", "", err
	}
	now := uc.now()
	reset := &entity.PasswordReset{
		ID:        uuid.New().String(),
		UserID:    userID,
		TokenHash: HashToken(token),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := uc.resetRepo.Create(ctx, reset); err != nil {
		return "", "", fmt.Errorf("guardar token de redefinición: %w", err)
	}
	return token, reset.ID, nil
}

// ConfirmPasswordReset cambia la contraseña si el token es válido, no expiró
// y no fue usado.
func (uc *AuthUseCase) ConfirmPasswordReset(ctx context.Context, in dto.PasswordResetConfirmRequest) error {
	reset, err := uc.resetRepo.GetByTokenHash(ctx, HashToken(in.Token))
	if err != nil {
		return err
	}
	now := uc.now()
	if reset == nil || reset.UsedAt != nil || now.After(reset.ExpiresAt) {
		return domain.ErrTokenExpired
	}
	user, err := uc.userRepo.GetByID(ctx, reset.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	// Marcar primero: si dos confirmaciones compiten, solo una pasa.
	if err := uc.resetRepo.MarkUsed(ctx, reset.ID); err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	if user.Status == entity.UserStatusInvited {
		user.Status = entity.UserStatusActive
	}
	user.UpdatedAt = now
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return err
	}
	uc.audit(ctx, user.ID, "user.password_reset", user.ID)
	return nil
}

func (uc *AuthUseCase) audit(ctx context.Context, userID, action, entityID string) {
	if uc.auditRepo == nil {
		return
	}
	err := uc.auditRepo.Create(ctx, &entity.AuditLog{
		ID:         uuid.New().String(),
		UserID:     userID,
		Action:     action,
		EntityType: "user",
		EntityID:   entityID,
		CreatedAt:  uc.now(),
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("action", action).Msg("no se pudo registrar auditoría")
	}
}

// HashToken SHA-256 en hex; solo el hash se persiste.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generar token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ToUserResponse mapea la entidad sin exponer el hash.
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Phone:       u.Phone,
		Role:        u.Role,
		Status:      u.Status,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
