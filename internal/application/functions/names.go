// Package functions expone el gateway de funciones de negocio nombradas:
// allowlist de nombres, caché de respuestas por clave de idempotencia y
// clasificación de errores (transitorio vs permanente).
package functions

// Nombres de las funciones invocables.
const (
	EmitPolicy           = "emit-policy"
	GenerateWelcomeKit   = "generate-welcome-kit"
	CreateStripeCheckout = "create-stripe-checkout"
	SendWhatsAppMessage  = "send-whatsapp-message"
	SendRecoveryMessage  = "send-recovery-message"
	SendUserInvitation   = "send-user-invitation"
	SendPasswordReset    = "send-password-reset"
	BulkOperations       = "bulk-operations"
	QueueManager         = "queue-manager"
	AIProcessor          = "ai-processor"
	N8NIntegration       = "n8n-integration"
	BillingManagement    = "billing-management"
)

var known = map[string]struct{}{
	EmitPolicy:           {},
	GenerateWelcomeKit:   {},
	CreateStripeCheckout: {},
	SendWhatsAppMessage:  {},
	SendRecoveryMessage:  {},
	SendUserInvitation:   {},
	SendPasswordReset:    {},
	BulkOperations:       {},
	QueueManager:         {},
	AIProcessor:          {},
	N8NIntegration:       {},
	BillingManagement:    {},
}

// Known informa si name está en la allowlist.
func Known(name string) bool {
	_, ok := known[name]
	return ok
}
