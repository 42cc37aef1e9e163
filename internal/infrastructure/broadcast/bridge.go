package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openbay/auction-service/internal/domain"
	"github.com/openbay/auction-service/internal/infrastructure/logger"
	"github.com/redis/go-redis/v9"
)

const channelPrefix = "room_events:"

// RedisBridge mirrors room events through Redis pub/sub so every instance
// of the service delivers the same per-room stream. Outbound events go to
// the local hub and to Redis; inbound events from other instances are fed
// into the local hub. Each bridge tags its envelopes with an instance id
// and drops its own echoes.
type RedisBridge struct {
	hub        *Hub
	client     *redis.Client
	instanceID string
}

func NewRedisBridge(hub *Hub, addr, password string, db int) (*RedisBridge, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisBridge{
		hub:        hub,
		client:     rdb,
		instanceID: uuid.New().String(),
	}, nil
}

// Publish delivers locally, then mirrors to Redis. The local enqueue
// happens synchronously so the admission path's enqueue-before-return
// guarantee does not depend on Redis.
func (b *RedisBridge) Publish(room string, event domain.EventType, payload any) {
	b.hub.Publish(room, event, payload)

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	frame, err := json.Marshal(Envelope{
		Type:   event,
		Room:   room,
		Data:   data,
		SentAt: time.Now().UTC(),
		Origin: b.instanceID,
	})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := b.client.Publish(ctx, channelPrefix+room, frame).Err(); err != nil {
		logger.Warn("failed to mirror event to redis", map[string]any{"room": room, "error": err.Error()})
	}
}

// Listen consumes mirrored events from other instances and feeds them into
// the local hub. Blocking; run in a goroutine.
func (b *RedisBridge) Listen(ctx context.Context) error {
	pubsub := b.client.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logger.Warn("failed to parse mirrored event", map[string]any{"channel": msg.Channel, "error": err.Error()})
				continue
			}
			if env.Origin == b.instanceID {
				continue
			}
			room := strings.TrimPrefix(msg.Channel, channelPrefix)
			b.hub.PublishFrame(room, []byte(msg.Payload))
		}
	}
}

func (b *RedisBridge) Close() error {
	return b.client.Close()
}
