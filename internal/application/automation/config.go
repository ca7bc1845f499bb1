// Package automation implementa la automatización de cierre de leads y los
// envíos de campañas sobre una cola durable en PostgreSQL (automation_jobs):
//
//	lead → paid ─► emit_policy ─(delay)─► generate_welcome_kit
//	                    │                        │
//	                    └── audit triggered      └── audit welcome kit
//
// Cada paso es un job con clave de idempotencia, reintentos con backoff
// exponencial para errores transitorios y compensación (auditoría +
// notificación al vendedor) cuando agota los intentos.
package automation

import "time"

// Config parámetros de la automatización.
type Config struct {
	WelcomeKitDelay time.Duration // retraso entre la emisión y el kit de bienvenida
	MaxAttempts     int
	BackoffBase     time.Duration
	BackoffMax      time.Duration
	Workers         int
	PollInterval    time.Duration
	LockFor         time.Duration // tiempo de bloqueo de un job reclamado
	JobTimeout      time.Duration // timeout de cada ejecución
}

// DefaultConfig valores por defecto.
func DefaultConfig() Config {
	return Config{
		WelcomeKitDelay: 5 * time.Minute,
		MaxAttempts:     5,
		BackoffBase:     10 * time.Second,
		BackoffMax:      30 * time.Minute,
		Workers:         2,
		PollInterval:    2 * time.Second,
		LockFor:         2 * time.Minute,
		JobTimeout:      60 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.WelcomeKitDelay < 0 {
		c.WelcomeKitDelay = 0
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = d.BackoffBase
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = d.BackoffMax
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.LockFor <= 0 {
		c.LockFor = d.LockFor
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = d.JobTimeout
	}
	return c
}

// Backoff devuelve la espera antes del reintento número attempt (1-based):
// base * 2^(attempt-1), acotado a max.
func Backoff(attempt int, base, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= max || d <= 0 {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}
