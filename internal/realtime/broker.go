package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event is a change notification pushed to subscribers. Snapshots may arrive
// more than once or out of order; clients keep the one with the newest
// UpdatedAt per entity id.
type Event struct {
	Type      string      `json:"type"`
	Entity    string      `json:"entity"`
	ID        uuid.UUID   `json:"id"`
	Status    string      `json:"status,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
	Data      interface{} `json:"data,omitempty"`
}

type envelope struct {
	Recipients []uuid.UUID     `json:"recipients"`
	Payload    json.RawMessage `json:"payload"`
}

// Broker fans events out to every API instance over redis pub/sub, and from
// there to the local Hub. Without redis it delivers to the local Hub only.
type Broker struct {
	rdb     *redis.Client
	hub     *Hub
	channel string
	log     *zap.Logger
}

func NewBroker(rdb *redis.Client, hub *Hub, channel string, log *zap.Logger) *Broker {
	return &Broker{rdb: rdb, hub: hub, channel: channel, log: log}
}

func (b *Broker) Publish(ctx context.Context, recipients []uuid.UUID, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if b.rdb == nil {
		b.deliver(recipients, payload)
		return nil
	}

	msg, err := json.Marshal(envelope{Recipients: recipients, Payload: payload})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, msg).Err()
}

func (b *Broker) deliver(recipients []uuid.UUID, payload []byte) {
	seen := make(map[uuid.UUID]struct{}, len(recipients))
	for _, id := range recipients {
		if id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		b.hub.SendRaw(id, payload)
	}
}

// Run consumes the redis channel until ctx is done.
func (b *Broker) Run(ctx context.Context) {
	if b.rdb == nil {
		return
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	b.log.Info("realtime broker subscribed", zap.String("channel", b.channel))
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.Warn("drop malformed realtime envelope", zap.Error(err))
				continue
			}
			b.deliver(env.Recipients, env.Payload)
		}
	}
}
