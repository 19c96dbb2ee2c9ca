package realtime

import (
	"context"
	"encoding/json"

	"github.com/pamlee/kitchen/internal/orders"
	"github.com/pamlee/kitchen/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Broadcaster shares fresh snapshots between independent clients so every
// dashboard converges without waiting for its own next poll tick.
type Broadcaster interface {
	Publish(ctx context.Context, snapshot []orders.Order) error
	// Listen blocks, invoking fn for each snapshot another client published,
	// until ctx is cancelled.
	Listen(ctx context.Context, fn func([]orders.Order)) error
}

type snapshotMessage struct {
	Type   string         `json:"type"`
	Sender string         `json:"sender"`
	Orders []orders.Order `json:"orders"`
}

// RedisBroadcaster carries snapshots over a shared pub/sub channel. Unlike
// a browser BroadcastChannel, Redis echoes publishes back to the sender, so
// each broadcaster tags messages with its own id and skips them on receive.
type RedisBroadcaster struct {
	Client  *redis.Client
	Channel string
	Sender  string
	Log     zerolog.Logger
}

func NewRedisBroadcaster(client *redis.Client, sender string, log zerolog.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{Client: client, Channel: redisx.ChannelSnapshots, Sender: sender, Log: log}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, snapshot []orders.Order) error {
	msg, err := json.Marshal(snapshotMessage{Type: "order_update", Sender: b.Sender, Orders: snapshot})
	if err != nil {
		return err
	}
	return b.Client.Publish(ctx, b.Channel, msg).Err()
}

func (b *RedisBroadcaster) Listen(ctx context.Context, fn func([]orders.Order)) error {
	sub := b.Client.Subscribe(ctx, b.Channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg snapshotMessage
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				b.Log.Warn().Err(err).Msg("malformed broadcast message")
				continue
			}
			if msg.Type != "order_update" || msg.Sender == b.Sender {
				continue
			}
			fn(msg.Orders)
		}
	}
}
