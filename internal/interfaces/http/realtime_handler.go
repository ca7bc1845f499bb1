package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/seguros-api/internal/application/dto"
	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
	"github.com/jhoicas/seguros-api/internal/infrastructure/realtime"
)

const sseHeartbeat = 20 * time.Second

// RealtimeHandler stream SSE de cambios por tabla o usuario.
type RealtimeHandler struct {
	hub *realtime.Hub
	ctx context.Context // se cancela en el apagado para cerrar los streams
	log zerolog.Logger
}

// NewRealtimeHandler construye el handler. ctx se cancela al apagar el servidor.
func NewRealtimeHandler(ctx context.Context, hub *realtime.Hub, log zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, ctx: ctx, log: log}
}

// Stream godoc
// @Summary      Suscripción a cambios en tiempo real (SSE)
// @Description  channels=table:leads,user:me. "user:me" es el canal propio; un seller no puede escuchar canales de otros usuarios.
// @Tags         realtime
// @Security     Bearer
// @Produce      text/event-stream
// @Param        channels  query  string  true  "Canales separados por coma"
// @Success      200  {string}  string  "SSE stream"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/realtime [get]
func (h *RealtimeHandler) Stream(c *fiber.Ctx) error {
	channels, errResp := resolveChannels(c.Query("channels"), GetUserID(c), GetRole(c))
	if errResp != nil {
		status := fiber.StatusBadRequest
		if errResp.Code == "FORBIDDEN" {
			status = fiber.StatusForbidden
		}
		return c.Status(status).JSON(errResp)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	sub := h.hub.Subscribe(channels...)
	log := h.log.With().Str("user_id", GetUserID(c)).Strs("channels", channels).Logger()
	log.Debug().Msg("cliente realtime conectado")

	// El *fiber.Ctx no es válido dentro del stream writer: solo se usan valores capturados.
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer h.hub.Unsubscribe(sub)
		ticker := time.NewTicker(sseHeartbeat)
		defer ticker.Stop()

		if err := writeSSE(w, "connected", map[string]any{"channels": channels}); err != nil {
			return
		}
		for {
			select {
			case <-h.ctx.Done():
				return
			case ev, ok := <-sub.C:
				if !ok {
					return
				}
				if err := writeSSE(w, ev.Type, ev); err != nil {
					log.Debug().Err(err).Msg("cliente realtime desconectado")
					return
				}
			case <-ticker.C:
				// Comentario SSE: detecta clientes caídos.
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					log.Debug().Err(err).Msg("cliente realtime desconectado")
					return
				}
			}
		}
	}))
	return nil
}

func writeSSE(w *bufio.Writer, event string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b); err != nil {
		return err
	}
	return w.Flush()
}

// resolveChannels valida la lista de canales. Solo admin/manager/compliance
// pueden escuchar el canal privado de otro usuario.
func resolveChannels(raw, userID, role string) ([]string, *dto.ErrorResponse) {
	var out []string
	seen := map[string]struct{}{}
	for _, ch := range strings.Split(raw, ",") {
		ch = strings.TrimSpace(ch)
		if ch == "" {
			continue
		}
		switch {
		case ch == "user:me":
			ch = ports.UserChannel(userID)
		case strings.HasPrefix(ch, "user:"):
			if ch != ports.UserChannel(userID) && role == entity.RoleSeller {
				return nil, &dto.ErrorResponse{Code: "FORBIDDEN", Message: "no puedes escuchar el canal de otro usuario"}
			}
		case strings.HasPrefix(ch, "table:") && len(ch) > len("table:"):
		default:
			return nil, &dto.ErrorResponse{Code: "VALIDATION", Message: "canal inválido: " + ch}
		}
		if _, ok := seen[ch]; ok {
			continue
		}
		seen[ch] = struct{}{}
		out = append(out, ch)
	}
	if len(out) == 0 {
		return nil, &dto.ErrorResponse{Code: "VALIDATION", Message: "channels es requerido (ej: table:leads,user:me)"}
	}
	return out, nil
}
