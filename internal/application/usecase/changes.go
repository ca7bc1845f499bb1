package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
)

// listScanLimit máximo de filas que se leen antes de aplicar la búsqueda por
// texto en memoria.
const listScanLimit = 5000

// pageResponse metadatos de página; scanned son las filas leídas del repo.
func pageResponse(limit, offset, total, scanned int) dto.PageResponse {
	return dto.PageResponse{Limit: limit, Offset: offset, Total: total, Truncated: scanned >= listScanLimit}
}

// Actor quien ejecuta la operación (viene del JWT).
type Actor struct {
	UserID string
	Role   string
	IP     string
}

// IsSeller informa si el actor solo ve sus propios registros.
func (a Actor) IsSeller() bool { return a.Role == entity.RoleSeller }

// Changes registra auditoría y publica eventos realtime de las mutaciones.
type Changes struct {
	audit     repository.AuditLogRepository
	publisher ports.RealtimePublisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewChanges construye el helper. publisher puede ser nil.
func NewChanges(audit repository.AuditLogRepository, publisher ports.RealtimePublisher, log zerolog.Logger) *Changes {
	return &Changes{audit: audit, publisher: publisher, log: log, now: time.Now}
}

// Audit escribe una fila de auditoría. repo permite escribir dentro de una
// transacción; nil usa el repositorio por defecto.
func (c *Changes) Audit(ctx context.Context, repo repository.AuditLogRepository, actor Actor, action, entityType, entityID string, details any) error {
	if repo == nil {
		repo = c.audit
	}
	var raw json.RawMessage
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return err
		}
		raw = b
	}
	return repo.Create(ctx, &entity.AuditLog{
		ID:         uuid.New().String(),
		UserID:     actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    raw,
		IPAddress:  actor.IP,
		CreatedAt:  c.now().UTC(),
	})
}

// Publish avisa un cambio en table:<table>. Los errores solo se registran.
func (c *Changes) Publish(ctx context.Context, table, evType, id string) {
	c.send(ctx, ports.RealtimeEvent{
		Channel: ports.TableChannel(table),
		Type:    evType,
		Table:   table,
		ID:      id,
	})
}

// Notify persiste la notificación y la publica en user:<id>.
func (c *Changes) Notify(ctx context.Context, repo repository.NotificationRepository, n *entity.Notification) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = c.now().UTC()
	}
	if err := repo.Create(ctx, n); err != nil {
		c.log.Warn().Err(err).Str("user_id", n.UserID).Msg("no se pudo crear la notificación")
		return
	}
	c.send(ctx, ports.RealtimeEvent{
		Channel: ports.UserChannel(n.UserID),
		Type:    ports.EventNotification,
		Table:   "notifications",
		ID:      n.ID,
		Payload: n,
	})
}

func (c *Changes) send(ctx context.Context, ev ports.RealtimeEvent) {
	if c.publisher == nil {
		return
	}
	ev.At = c.now().UTC()
	if err := c.publisher.Publish(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
		c.log.Debug().Err(err).Str("channel", ev.Channel).Msg("evento realtime descartado")
	}
}
