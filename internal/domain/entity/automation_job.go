package entity

import (
	"encoding/json"
	"time"
)

// JobKind tipo de paso de automatización.
type JobKind string

const (
	JobKindEmitPolicy          JobKind = "emit_policy"
	JobKindGenerateWelcomeKit  JobKind = "generate_welcome_kit"
	JobKindSendRecoveryMessage JobKind = "send_recovery_message"
)

// JobStatus estado de un job durable.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// AutomationJob paso durable de una automatización. RunAt permite diferir
// la ejecución (p. ej. el retraso del kit de bienvenida) sin depender de
// timers en memoria.
type AutomationJob struct {
	ID             string
	Kind           JobKind
	IdempotencyKey string
	Payload        json.RawMessage
	Status         JobStatus
	Attempts       int
	MaxAttempts    int
	RunAt          time.Time
	LockedUntil    *time.Time
	LastError      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
