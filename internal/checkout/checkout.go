package checkout

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pamlee/kitchen/internal/orders"
	"github.com/rs/zerolog"
)

// GuestEmail is attached to orders placed without an account.
const GuestEmail = "guest@pamlee.co.za"

type CardDetails struct {
	Number string
	Expiry string // MM/YY
	CVV    string
	Name   string
}

// Request carries the customer's checkout selections.
type Request struct {
	PaymentMethod   string
	Card            CardDetails
	Fulfilment      string
	DeliveryZone    string
	DeliveryAddress string
}

// ValidationError carries a message meant for the customer, not the log.
type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

func fail(msg string) error { return &ValidationError{Message: msg} }

// Result reports what happened to a submitted order. Pending orders were
// written to the local queue after a network failure and await a Flush;
// they are never presented as confirmed.
type Result struct {
	Order     orders.Order
	Confirmed bool
}

// Submitter is the API call that records the order server-side.
type Submitter interface {
	CreateOrder(ctx context.Context, o *orders.Order) (string, error)
}

type Orchestrator struct {
	Client Submitter
	Queue  *PendingQueue // optional local fallback
	Log    zerolog.Logger

	Now func() time.Time // swappable in tests
}

func (c *Orchestrator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Validate runs the checkout checks in presentation order and returns the
// first failure as a customer-facing message. No network calls are made.
func Validate(req Request, now time.Time) error {
	if req.PaymentMethod == "" {
		return fail("Please select a payment method")
	}
	if req.PaymentMethod == orders.PaymentCard {
		card := req.Card
		if strings.TrimSpace(card.Number) == "" {
			return fail("Please enter your card number")
		}
		if !ValidCardNumber(card.Number) {
			return fail("Invalid card number. Please check and try again.")
		}
		if strings.TrimSpace(card.Expiry) == "" {
			return fail("Please enter card expiry date")
		}
		if !ValidExpiry(card.Expiry, now) {
			return fail("Invalid or expired card. Please check the expiry date.")
		}
		if strings.TrimSpace(card.CVV) == "" {
			return fail("Please enter CVV")
		}
		brand := DetectBrand(card.Number)
		if !ValidCVV(card.CVV, brand) {
			if brand == BrandAmex {
				return fail("Invalid CVV. 4 digits required")
			}
			return fail("Invalid CVV. 3 digits required")
		}
		if strings.TrimSpace(card.Name) == "" {
			return fail("Please enter cardholder name")
		}
	}
	if req.Fulfilment == "" {
		return fail("Please select pickup or delivery")
	}
	if req.Fulfilment == orders.FulfilmentDelivery {
		if req.DeliveryZone == "" {
			return fail("Please select your delivery location")
		}
		if _, ok := DeliveryZones[req.DeliveryZone]; !ok {
			return fail("Please select your delivery location")
		}
		if strings.TrimSpace(req.DeliveryAddress) == "" {
			return fail("Please enter your delivery address")
		}
	}
	return nil
}

// NewTrackerID builds the public order handle: a time-based prefix for
// readability plus a UUID-derived suffix for collision resistance.
func NewTrackerID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return fmt.Sprintf("PL-%s-%s", strconv.FormatInt(now.UnixMilli(), 36), suffix)
}

// Checkout validates the request, derives totals and submits the order.
// On a network failure the order is queued locally and reported as pending
// instead of confirmed.
func (c *Orchestrator) Checkout(ctx context.Context, items []orders.Item, userEmail string, req Request) (*Result, error) {
	now := c.now()
	if len(items) == 0 {
		return nil, fail("Your cart is empty")
	}
	if err := Validate(req, now); err != nil {
		return nil, err
	}

	var subtotal float64
	for _, it := range items {
		subtotal += it.Price * float64(it.Quantity)
	}

	deliveryFee := 0.0
	deliveryLocation := "N/A"
	deliveryAddress := "N/A"
	if req.Fulfilment == orders.FulfilmentDelivery {
		zone := DeliveryZones[req.DeliveryZone]
		deliveryFee = zone.Fee
		deliveryLocation = zone.Name
		deliveryAddress = req.DeliveryAddress
	}

	if userEmail == "" {
		userEmail = GuestEmail
	}

	o := orders.Order{
		TrackerID:        NewTrackerID(now),
		UserEmail:        userEmail,
		Items:            items,
		Subtotal:         subtotal,
		DeliveryFee:      deliveryFee,
		Total:            subtotal + deliveryFee,
		PaymentMethod:    req.PaymentMethod,
		Fulfilment:       req.Fulfilment,
		DeliveryLocation: deliveryLocation,
		DeliveryAddress:  deliveryAddress,
	}

	if _, err := c.Client.CreateOrder(ctx, &o); err != nil {
		if c.Queue == nil {
			return nil, err
		}
		c.Log.Warn().Err(err).Str("tracker_id", o.TrackerID).Msg("order submission failed, queued locally")
		if qerr := c.Queue.Enqueue(o); qerr != nil {
			return nil, qerr
		}
		return &Result{Order: o, Confirmed: false}, nil
	}
	return &Result{Order: o, Confirmed: true}, nil
}
