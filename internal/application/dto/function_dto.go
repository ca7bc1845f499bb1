package dto

// EmitPolicyRequest cuerpo de la función emit-policy.
type EmitPolicyRequest struct {
	SaleID string `json:"sale_id" validate:"required"`
}

// EmitPolicyResponse respuesta de emit-policy. Created=false cuando la venta
// ya tenía póliza y se devolvió la existente.
type EmitPolicyResponse struct {
	PolicyID     string `json:"policy_id"`
	PolicyNumber string `json:"policy_number"`
	Created      bool   `json:"created"`
}

// GenerateWelcomeKitRequest cuerpo de generate-welcome-kit.
type GenerateWelcomeKitRequest struct {
	SaleID string `json:"sale_id" validate:"required"`
}

// GenerateWelcomeKitResponse respuesta de generate-welcome-kit.
type GenerateWelcomeKitResponse struct {
	PolicyID   string `json:"policy_id"`
	StorageKey string `json:"storage_key"`
}

// RecoveryMessageRequest cuerpo de send-recovery-message (un destinatario).
type RecoveryMessageRequest struct {
	CampaignID string `json:"campaign_id"`
	LeadID     string `json:"lead_id"`
	Channel    string `json:"channel"`
	To         string `json:"to"`
	Message    string `json:"message"`
}

// PasswordResetMessage cuerpo de send-password-reset.
type PasswordResetMessage struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

// UserInvitationMessage cuerpo de send-user-invitation.
type UserInvitationMessage struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Token  string `json:"token"` // para definir la contraseña
}
