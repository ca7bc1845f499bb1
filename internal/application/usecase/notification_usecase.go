package usecase

import (
	"context"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/domain"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

const notificationListLimit = 100

// NotificationUseCase bandeja de notificaciones del usuario autenticado.
type NotificationUseCase struct {
	repo    repository.NotificationRepository
	changes *Changes
}

// NewNotificationUseCase construye el caso de uso.
func NewNotificationUseCase(repo repository.NotificationRepository, changes *Changes) *NotificationUseCase {
	return &NotificationUseCase{repo: repo, changes: changes}
}

// List devuelve las últimas notificaciones y cuántas siguen sin leer.
func (uc *NotificationUseCase) List(ctx context.Context, userID string, unreadOnly bool) (*dto.NotificationListResponse, error) {
	list, err := uc.repo.ListByUser(ctx, userID, unreadOnly, notificationListLimit)
	if err != nil {
		return nil, err
	}
	out := &dto.NotificationListResponse{Items: make([]dto.NotificationResponse, 0, len(list))}
	for _, n := range list {
		if n.ReadAt == nil {
			out.Unread++
		}
		out.Items = append(out.Items, toNotificationResponse(n))
	}
	return out, nil
}

// MarkRead marca una notificación propia como leída.
func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, id string) error {
	ok, err := uc.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	uc.changes.Publish(ctx, "notifications", ports.EventUpdate, id)
	return nil
}

// MarkAllRead marca todas las notificaciones del usuario.
func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) (*dto.MarkAllReadResponse, error) {
	n, err := uc.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		uc.changes.Publish(ctx, "notifications", ports.EventUpdate, "")
	}
	return &dto.MarkAllReadResponse{Updated: n}, nil
}

func toNotificationResponse(n *entity.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		Read:      n.ReadAt != nil,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
