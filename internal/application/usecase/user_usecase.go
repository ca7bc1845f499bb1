package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/seguros-api/internal/application/auth"
	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/functions"
	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/filter"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// InvitationTTL vigencia del enlace de invitación.
const InvitationTTL = 7 * 24 * time.Hour

// TokenIssuer emite tokens de un solo uso para definir contraseña (lo implementa *auth.AuthUseCase).
type TokenIssuer interface {
	IssueResetToken(ctx context.Context, userID string, ttl time.Duration) (string, error)
}

// UserUseCase administración de operadores del back-office.
type UserUseCase struct {
	repo      repository.UserRepository
	tokens    TokenIssuer
	functions ports.FunctionInvoker
	changes   *Changes
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(repo repository.UserRepository, tokens TokenIssuer, fn ports.FunctionInvoker, changes *Changes) *UserUseCase {
	return &UserUseCase{repo: repo, tokens: tokens, functions: fn, changes: changes}
}

// List lista usuarios; search busca en nombre y email.
func (uc *UserUseCase) List(ctx context.Context, search string, page dto.PageRequest) (*dto.UserListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, listScanLimit, 0)
	if err != nil {
		return nil, err
	}
	term := filter.Fold(search)
	matched := filter.Apply(list, func(u *entity.User) bool {
		return term == "" || strings.Contains(filter.Fold(u.Name), term) || strings.Contains(filter.Fold(u.Email), term)
	})
	paged := filter.Page(matched, page.Limit, page.Offset)
	items := make([]dto.UserResponse, 0, len(paged))
	for _, u := range paged {
		items = append(items, *auth.ToUserResponse(u))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  pageResponse(page.Limit, page.Offset, len(matched), len(list)),
	}, nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return auth.ToUserResponse(user), nil
}

// Invite crea el usuario en estado invited y le envía, vía
// send-user-invitation, el token para definir su contraseña.
func (uc *UserUseCase) Invite(ctx context.Context, actor Actor, in dto.InviteUserRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !entity.ValidRole(in.Role) {
		return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, in.Role)
	}
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	now := time.Now().UTC()
	user := &entity.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      strings.TrimSpace(in.Name),
		Role:      in.Role,
		Status:    entity.UserStatusInvited,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	token, err := uc.tokens.IssueResetToken(ctx, user.ID, InvitationTTL)
	if err != nil {
		return nil, err
	}
	body, _ := json.Marshal(dto.UserInvitationMessage{
		UserID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role, Token: token,
	})
	if _, err := uc.functions.Invoke(ctx, functions.SendUserInvitation, body, "user-invitation:"+user.ID); err != nil {
		return nil, fmt.Errorf("enviar invitación: %w", err)
	}
	if err := uc.changes.Audit(ctx, nil, actor, "user.invited", "user", user.ID, map[string]any{
		"email": user.Email, "role": user.Role,
	}); err != nil {
		return nil, err
	}
	uc.changes.Publish(ctx, "users", ports.EventInsert, user.ID)
	return auth.ToUserResponse(user), nil
}

// Update cambia nombre, rol o estado. Un administrador no puede suspenderse
// ni quitarse el rol a sí mismo.
func (uc *UserUseCase) Update(ctx context.Context, actor Actor, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	changed := map[string]any{}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
		changed["name"] = user.Name
	}
	if in.Role != nil && *in.Role != user.Role {
		if !entity.ValidRole(*in.Role) {
			return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, *in.Role)
		}
		if id == actor.UserID {
			return nil, fmt.Errorf("%w: no puedes cambiar tu propio rol", domain.ErrConflict)
		}
		changed["role"] = map[string]string{"from": user.Role, "to": *in.Role}
		user.Role = *in.Role
	}
	if in.Status != nil && *in.Status != user.Status {
		if id == actor.UserID && *in.Status == entity.UserStatusSuspended {
			return nil, fmt.Errorf("%w: no puedes suspender tu propia cuenta", domain.ErrConflict)
		}
		changed["status"] = map[string]string{"from": user.Status, "to": *in.Status}
		user.Status = *in.Status
	}
	user.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := uc.changes.Audit(ctx, nil, actor, "user.updated", "user", user.ID, changed); err != nil {
		return nil, err
	}
	uc.changes.Publish(ctx, "users", ports.EventUpdate, user.ID)
	return auth.ToUserResponse(user), nil
}
