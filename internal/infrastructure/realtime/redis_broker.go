package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/seguros-api/internal/application/ports"
)

// DefaultRedisChannel canal de Redis compartido por todas las instancias.
const DefaultRedisChannel = "seguros:realtime"

var _ ports.RealtimePublisher = (*RedisBroker)(nil)

// RedisBroker reparte los eventos entre instancias: Publish los envía a
// Redis y Run los recibe de Redis y los entrega al Hub local. Cada instancia,
// incluida la que publica, recibe el evento una sola vez a través de Redis.
type RedisBroker struct {
	client  *redis.Client
	channel string
	hub     *Hub
	log     zerolog.Logger
}

// NewRedisBroker construye el broker. channel vacío usa DefaultRedisChannel.
func NewRedisBroker(client *redis.Client, channel string, hub *Hub, log zerolog.Logger) *RedisBroker {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisBroker{client: client, channel: channel, hub: hub, log: log}
}

// Publish implementa ports.RealtimePublisher.
func (b *RedisBroker) Publish(ctx context.Context, ev ports.RealtimeEvent) error {
	data, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Run se suscribe al canal de Redis y reenvía al Hub hasta que ctx se cancela.
func (b *RedisBroker) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}
	b.log.Info().Str("channel", b.channel).Msg("broker realtime suscrito a redis")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			ev, err := decodeEvent(msg.Payload)
			if err != nil {
				b.log.Warn().Err(err).Msg("evento realtime inválido en redis")
				continue
			}
			_ = b.hub.Publish(ctx, ev)
		}
	}
}

func encodeEvent(ev ports.RealtimeEvent) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("serializar evento: %w", err)
	}
	return data, nil
}

func decodeEvent(payload string) (ports.RealtimeEvent, error) {
	var ev ports.RealtimeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, err
	}
	if ev.Channel == "" {
		return ev, fmt.Errorf("evento sin canal")
	}
	return ev, nil
}
