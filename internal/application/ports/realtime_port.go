package ports

import (
	"context"
	"time"
)

// Tipos de evento realtime.
const (
	EventInsert       = "insert"
	EventUpdate       = "update"
	EventDelete       = "delete"
	EventNotification = "notification"
)

// RealtimeEvent notificación de cambio. Los suscriptores reciben solo el
// último estado (last write wins); no hay garantía de entrega.
type RealtimeEvent struct {
	Channel string    `json:"channel"`
	Type    string    `json:"type"`
	Table   string    `json:"table,omitempty"`
	ID      string    `json:"id,omitempty"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// RealtimePublisher publica eventos hacia los canales suscritos.
type RealtimePublisher interface {
	Publish(ctx context.Context, ev RealtimeEvent) error
}

// TableChannel canal de cambios de una tabla ("table:leads").
func TableChannel(table string) string { return "table:" + table }

// UserChannel canal privado de un usuario ("user:<id>").
func UserChannel(userID string) string { return "user:" + userID }
