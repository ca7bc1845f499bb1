package dto

import "time"

// NotificationResponse salida de una notificación.
type NotificationResponse struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Link      string     `json:"link,omitempty"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NotificationListResponse notificaciones del usuario con el conteo de no leídas.
type NotificationListResponse struct {
	Items  []NotificationResponse `json:"items"`
	Unread int                    `json:"unread"`
}

// MarkAllReadResponse cantidad de notificaciones marcadas.
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
