package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pamlee/kitchen/internal/kafka"
	"github.com/pamlee/kitchen/internal/orders"
	"github.com/pamlee/kitchen/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

// Service turns order lifecycle events from the broker into change notices
// on the shared Redis channel, and keeps the tracking cache honest by
// dropping stale entries. Clients polling on the standard interval still
// converge without it; the notifier only shortens the window.
type Service struct {
	Redis       *redis.Client
	ServiceName string
	Log         zerolog.Logger
}

// HandleEvent is wired as the consumer handler for the order events topic.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup by event id; replays are normal after rebalances
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	n, err := s.Redis.Exists(ctx, dkey).Result()
	if err == nil && n > 0 {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case orders.EventOrderPlaced:
		p, err := kafka.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.notify(ctx, orders.ChangeNotice{
			Type:      "new_order",
			TrackerID: p.TrackerID,
			Status:    orders.StatusPlaced,
			UserEmail: p.UserEmail,
			At:        env.OccurredAt,
		})
	case orders.EventOrderStatusChanged:
		p, err := kafka.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		// the cached tracking snapshot is now stale
		_ = s.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrder, p.TrackerID)).Err()
		return s.notify(ctx, orders.ChangeNotice{
			Type:      "order_update",
			TrackerID: p.TrackerID,
			Status:    p.To,
			UserEmail: p.UserEmail,
			At:        p.UpdatedAt,
		})
	default:
		return nil
	}
}

func (s *Service) notify(ctx context.Context, n orders.ChangeNotice) error {
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if err := s.Redis.Publish(ctx, redisx.ChannelOrders, b).Err(); err != nil {
		s.Log.Error().Err(err).Str("tracker_id", n.TrackerID).Msg("publish change notice")
		return err
	}
	s.Log.Debug().Str("tracker_id", n.TrackerID).Str("type", n.Type).Msg("change notice published")
	return nil
}
