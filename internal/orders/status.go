package orders

import "fmt"

type Status string

const (
	StatusPlaced         Status = "placed"
	StatusConfirmed      Status = "confirmed"
	StatusPreparing      Status = "preparing"
	StatusReady          Status = "ready"
	StatusOutForDelivery Status = "out-for-delivery"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

// rank orders the happy path. cancelled sits outside of it and is handled
// separately in CanTransition.
var rank = map[Status]int{
	StatusPlaced:         0,
	StatusConfirmed:      1,
	StatusPreparing:      2,
	StatusReady:          3,
	StatusOutForDelivery: 4,
	StatusCompleted:      5,
}

func (s Status) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := rank[s]
	return ok
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition permits forward-only moves along the happy path (skipping
// steps is allowed, e.g. ready -> completed for pickup orders) and
// cancellation from any non-terminal state. Terminal states accept nothing.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return rank[to] > rank[from]
}

func (s Status) Label() string {
	switch s {
	case StatusPlaced:
		return "Placed"
	case StatusConfirmed:
		return "Confirmed"
	case StatusPreparing:
		return "Preparing"
	case StatusReady:
		return "Ready"
	case StatusOutForDelivery:
		return "Out for Delivery"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// DefaultMessage is the server-owned timeline message used when the admin
// supplies no note.
func DefaultMessage(s Status) string {
	return fmt.Sprintf("Order status updated to %q", string(s))
}

const PlacedMessage = "Order placed successfully."
