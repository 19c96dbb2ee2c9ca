package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id"` // tracker id
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	TrackerID string  `json:"tracker_id"`
	UserEmail string  `json:"user_email"`
	Total     float64 `json:"total"`
}

type OrderStatusChangedPayload struct {
	TrackerID string    `json:"tracker_id"`
	UserEmail string    `json:"user_email"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChangeNotice is the compact message fanned out on the shared broadcast
// channel so connected clients refresh ahead of their next poll tick.
type ChangeNotice struct {
	Type      string    `json:"type"` // "new_order" or "order_update"
	TrackerID string    `json:"trackerId"`
	Status    Status    `json:"status"`
	UserEmail string    `json:"userEmail"`
	At        time.Time `json:"at"`
}
