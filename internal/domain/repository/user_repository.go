package repository

import (
	"context"

	"github.com/jhoicas/seguros-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
}

// PasswordResetRepository persiste tokens de redefinición de contraseña.
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *entity.PasswordReset) error
	// GetByTokenHash devuelve el token aún no usado con ese hash (nil si no existe).
	GetByTokenHash(ctx context.Context, tokenHash string) (*entity.PasswordReset, error)
	MarkUsed(ctx context.Context, id string) error
}
