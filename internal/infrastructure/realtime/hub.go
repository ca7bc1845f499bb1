// Package realtime distribuye eventos de cambio a los suscriptores del
// dashboard. Los canales son "table:<tabla>" y "user:<id>".
package realtime

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jhoicas/seguros-api/internal/application/ports"
)

// DefaultBuffer eventos en cola por suscriptor.
const DefaultBuffer = 32

var _ ports.RealtimePublisher = (*Hub)(nil)

// Subscription suscripción a uno o más canales. C se cierra al desuscribir.
type Subscription struct {
	C        <-chan ports.RealtimeEvent
	ch       chan ports.RealtimeEvent
	channels []string
}

// Hub pub/sub en memoria. Publish nunca bloquea: si un suscriptor está
// lleno se descarta su evento más antiguo (gana el último).
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]map[*Subscription]struct{}
	buffer  int
	dropped atomic.Int64
}

// NewHub crea el hub. buffer <= 0 usa DefaultBuffer.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{subs: map[string]map[*Subscription]struct{}{}, buffer: buffer}
}

// Subscribe registra una suscripción a channels.
func (h *Hub) Subscribe(channels ...string) *Subscription {
	ch := make(chan ports.RealtimeEvent, h.buffer)
	sub := &Subscription{C: ch, ch: ch, channels: channels}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range channels {
		if h.subs[c] == nil {
			h.subs[c] = map[*Subscription]struct{}{}
		}
		h.subs[c][sub] = struct{}{}
	}
	return sub
}

// Unsubscribe elimina la suscripción y cierra su canal. Es idempotente.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	found := false
	for _, c := range sub.channels {
		if set, ok := h.subs[c]; ok {
			if _, ok := set[sub]; ok {
				found = true
				delete(set, sub)
			}
			if len(set) == 0 {
				delete(h.subs, c)
			}
		}
	}
	if found {
		close(sub.ch)
	}
}

// Publish entrega ev a los suscriptores de ev.Channel.
func (h *Hub) Publish(_ context.Context, ev ports.RealtimeEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[ev.Channel] {
		h.deliver(sub.ch, ev)
	}
	return nil
}

func (h *Hub) deliver(ch chan ports.RealtimeEvent, ev ports.RealtimeEvent) {
	for {
		select {
		case ch <- ev:
			return
		default:
		}
		// Lleno: descartar el más antiguo y reintentar.
		select {
		case <-ch:
			h.dropped.Add(1)
		default:
		}
	}
}

// Subscribers cantidad de suscripciones activas en channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[channel])
}

// Dropped eventos descartados por suscriptores lentos desde el arranque.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }
