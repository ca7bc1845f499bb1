package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleSeller     = "seller"
	RoleCompliance = "compliance"
)

// Estados de cuenta.
const (
	UserStatusActive    = "active"
	UserStatusInvited   = "invited"
	UserStatusSuspended = "suspended"
)

// ValidRole informa si el rol está declarado.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleSeller, RoleCompliance:
		return true
	}
	return false
}

// User operador del back-office.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt; vacío mientras la invitación no se acepta
	Name         string
	Phone        string
	Role         string
	Status       string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PasswordReset token de un solo uso para redefinir contraseña.
// Solo se persiste el hash SHA-256 del token.
type PasswordReset struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
