package orders

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

// RoleAdmin is the caller role that may see and mutate every order.
const RoleAdmin = "admin"

// EventPublisher is satisfied by the Kafka producer. A nil publisher
// disables the event stream without touching the order flow.
type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Store     Store
	Publisher EventPublisher
	Producer  string // service name stamped on events
	Log       zerolog.Logger

	// Now is swappable in tests. Defaults to time.Now.
	Now func() time.Time
}

func NewService(store Store, pub EventPublisher, producer string, log zerolog.Logger) *Service {
	return &Service{Store: store, Publisher: pub, Producer: producer, Log: log, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create validates and persists a new order. The order always starts as
// "placed" with exactly one timeline entry, regardless of what the caller
// sent. Returns the tracker id.
func (s *Service) Create(ctx context.Context, o *Order) (string, error) {
	if o.TrackerID == "" {
		return "", invalidf("trackerId", "is required")
	}
	if o.UserEmail == "" {
		return "", invalidf("userEmail", "is required")
	}
	if len(o.Items) == 0 {
		return "", invalidf("items", "must not be empty")
	}
	for _, it := range o.Items {
		if it.Quantity < 1 {
			return "", invalidf("items", "quantity must be at least 1")
		}
	}
	if o.Total == 0 {
		return "", invalidf("total", "is required")
	}
	if o.DeliveryFee < 0 {
		return "", invalidf("deliveryFee", "must not be negative")
	}
	if math.Abs(o.Total-(o.Subtotal+o.DeliveryFee)) > 1e-9 {
		return "", invalidf("total", "must equal subtotal plus deliveryFee")
	}
	if o.Fulfilment == FulfilmentPickup {
		if o.DeliveryFee != 0 {
			return "", invalidf("deliveryFee", "must be 0 for pickup")
		}
		o.DeliveryLocation = "N/A"
		o.DeliveryAddress = "N/A"
	}
	if o.DeliveryLocation == "" {
		o.DeliveryLocation = "N/A"
	}
	if o.DeliveryAddress == "" {
		o.DeliveryAddress = "N/A"
	}

	now := s.now()
	o.Status = StatusPlaced
	o.Timeline = []TimelineEntry{{Date: now, Status: StatusPlaced, Message: PlacedMessage}}
	o.PlacedAt = now
	o.UpdatedAt = now
	o.Version = 1

	if err := s.Store.Insert(ctx, o); err != nil {
		return "", err
	}

	s.publish(EventOrderPlaced, o.TrackerID, OrderPlacedPayload{
		TrackerID: o.TrackerID,
		UserEmail: o.UserEmail,
		Total:     o.Total,
	})
	s.Log.Info().Str("tracker_id", o.TrackerID).Str("user_email", o.UserEmail).
		Float64("total", o.Total).Msg("order placed")
	return o.TrackerID, nil
}

// List returns every order for admins and only the caller's own orders
// otherwise, newest-first.
func (s *Service) List(ctx context.Context, role, email string) ([]Order, error) {
	if role == RoleAdmin {
		return s.Store.List(ctx)
	}
	return s.Store.ListByEmail(ctx, email)
}

// GetByTrackerID is public: the tracker id itself acts as the access token.
func (s *Service) GetByTrackerID(ctx context.Context, trackerID string) (*Order, error) {
	return s.Store.GetByTrackerID(ctx, trackerID)
}

// UpdateStatus applies a status transition, appending exactly one timeline
// entry. The message is server-owned: a non-empty note is taken verbatim,
// otherwise a templated default is used. Illegal transitions are rejected.
// Concurrent writers are handled by optimistic version checks with a few
// retries; losing every retry surfaces ErrVersionConflict.
func (s *Service) UpdateStatus(ctx context.Context, trackerID string, newStatus Status, note string) (*Order, error) {
	if !newStatus.Valid() {
		return nil, invalidf("status", "is not a known status")
	}

	for attempt := 0; attempt < 3; attempt++ {
		o, err := s.Store.GetByTrackerID(ctx, trackerID)
		if err != nil {
			return nil, err
		}
		if !CanTransition(o.Status, newStatus) {
			return nil, &TransitionError{From: o.Status, To: newStatus}
		}

		msg := note
		if msg == "" {
			msg = DefaultMessage(newStatus)
		}
		from := o.Status
		now := s.now()
		o.Timeline = append(o.Timeline, TimelineEntry{Date: now, Status: newStatus, Message: msg})
		o.Status = newStatus
		o.UpdatedAt = now
		expected := o.Version
		o.Version++

		err = s.Store.Update(ctx, o, expected)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.publish(EventOrderStatusChanged, trackerID, OrderStatusChangedPayload{
			TrackerID: trackerID,
			UserEmail: o.UserEmail,
			From:      from,
			To:        newStatus,
			Message:   msg,
			UpdatedAt: now,
		})
		s.Log.Info().Str("tracker_id", trackerID).
			Str("from", string(from)).Str("to", string(newStatus)).Msg("order status updated")
		return o, nil
	}
	return nil, ErrVersionConflict
}

// Stats recomputes aggregates from the full order set on every call.
// Cancelled orders are excluded from revenue.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.Store.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{ByStatus: make(map[Status]int)}
	st.TotalOrders = len(all)
	for _, o := range all {
		st.ByStatus[o.Status]++
		if o.Status == StatusPlaced {
			st.PendingOrders++
		}
		if o.Status != StatusCancelled {
			st.TotalRevenue += o.Total
		}
	}
	return st, nil
}

func (s *Service) publish(eventType, trackerID string, payload any) {
	if s.Publisher == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		s.Log.Error().Err(err).Str("event_type", eventType).Msg("marshal event payload")
		return
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    s.now(),
		Producer:      s.Producer,
		CorrelationID: trackerID,
		Payload:       raw,
	}
	value, err := json.Marshal(env)
	if err != nil {
		s.Log.Error().Err(err).Str("event_type", eventType).Msg("marshal event envelope")
		return
	}
	s.Publisher.Publish(PartitionKey(trackerID), value,
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
