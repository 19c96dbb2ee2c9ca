package orders

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []Envelope
}

func (p *capturePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var env Envelope
	if err := json.Unmarshal(value, &env); err == nil {
		p.events = append(p.events, env)
	}
}

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType
	}
	return out
}

func newTestService(t *testing.T) (*Service, *MemStore, *capturePublisher) {
	t.Helper()
	store := NewMemStore()
	pub := &capturePublisher{}
	svc := NewService(store, pub, "test", zerolog.Nop())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	svc.Now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return svc, store, pub
}

func validOrder() *Order {
	return &Order{
		TrackerID:     "PL-TEST-0001",
		UserEmail:     "thandi@example.com",
		Items:         []Item{{ProductID: "1", Name: "Chocolate Cake", Price: 250, Quantity: 1}},
		Subtotal:      250,
		DeliveryFee:   30,
		Total:         280,
		PaymentMethod: PaymentCash,
		Fulfilment:    FulfilmentDelivery,
	}
}

func TestCreate(t *testing.T) {
	svc, _, pub := newTestService(t)

	o := validOrder()
	id, err := svc.Create(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, "PL-TEST-0001", id)

	got, err := svc.GetByTrackerID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusPlaced, got.Status)
	require.Len(t, got.Timeline, 1)
	assert.Equal(t, StatusPlaced, got.Timeline[0].Status)
	assert.Equal(t, PlacedMessage, got.Timeline[0].Message)
	assert.Equal(t, got.PlacedAt, got.Timeline[0].Date)
	assert.Equal(t, []string{EventOrderPlaced}, pub.types())
}

func TestCreateIgnoresClientStatus(t *testing.T) {
	svc, _, _ := newTestService(t)

	o := validOrder()
	o.Status = StatusCompleted
	o.Timeline = []TimelineEntry{{Status: StatusCompleted, Message: "done"}}
	id, err := svc.Create(context.Background(), o)
	require.NoError(t, err)

	got, err := svc.GetByTrackerID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusPlaced, got.Status)
	require.Len(t, got.Timeline, 1)
	assert.Equal(t, PlacedMessage, got.Timeline[0].Message)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Order)
	}{
		{"missing tracker id", func(o *Order) { o.TrackerID = "" }},
		{"missing email", func(o *Order) { o.UserEmail = "" }},
		{"no items", func(o *Order) { o.Items = nil }},
		{"zero quantity", func(o *Order) { o.Items[0].Quantity = 0 }},
		{"zero total", func(o *Order) { o.Subtotal, o.DeliveryFee, o.Total = 0, 0, 0 }},
		{"negative fee", func(o *Order) { o.DeliveryFee, o.Total = -10, 240 }},
		{"total mismatch", func(o *Order) { o.Total = 300 }},
		{"pickup with fee", func(o *Order) { o.Fulfilment = FulfilmentPickup }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newTestService(t)
			o := validOrder()
			tt.mutate(o)
			_, err := svc.Create(context.Background(), o)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)

			all, err := store.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all, "rejected order must not be persisted")
		})
	}
}

func TestCreatePickupDefaults(t *testing.T) {
	svc, _, _ := newTestService(t)

	o := validOrder()
	o.Fulfilment = FulfilmentPickup
	o.DeliveryFee = 0
	o.Total = 250
	o.DeliveryLocation = "Giyani Central"
	o.DeliveryAddress = "12 Main Rd"
	id, err := svc.Create(context.Background(), o)
	require.NoError(t, err)

	got, err := svc.GetByTrackerID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "N/A", got.DeliveryLocation)
	assert.Equal(t, "N/A", got.DeliveryAddress)
}

func TestCreateDuplicateTracker(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), validOrder())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), validOrder())
	assert.ErrorIs(t, err, ErrTrackerExists)
}

func TestUpdateStatus(t *testing.T) {
	svc, _, pub := newTestService(t)
	id, err := svc.Create(context.Background(), validOrder())
	require.NoError(t, err)

	got, err := svc.UpdateStatus(context.Background(), id, StatusConfirmed, "")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)
	require.Len(t, got.Timeline, 2)
	assert.Equal(t, DefaultMessage(StatusConfirmed), got.Timeline[1].Message)
	assert.True(t, got.Timeline[1].Date.After(got.Timeline[0].Date))

	got, err = svc.UpdateStatus(context.Background(), id, StatusPreparing, "Baking now")
	require.NoError(t, err)
	require.Len(t, got.Timeline, 3)
	assert.Equal(t, "Baking now", got.Timeline[2].Message)

	assert.Equal(t, []string{EventOrderPlaced, EventOrderStatusChanged, EventOrderStatusChanged}, pub.types())
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	svc, _, _ := newTestService(t)
	id, err := svc.Create(context.Background(), validOrder())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), id, StatusPreparing, "")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), id, StatusConfirmed, "")
	var tErr *TransitionError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, StatusPreparing, tErr.From)
	assert.Equal(t, StatusConfirmed, tErr.To)

	// rejected update must not touch the timeline
	got, err := svc.GetByTrackerID(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, got.Timeline, 2)
}

func TestUpdateStatusUnknown(t *testing.T) {
	svc, _, _ := newTestService(t)
	id, err := svc.Create(context.Background(), validOrder())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), id, Status("shipped"), "")
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.UpdateStatus(context.Background(), "PL-MISSING", StatusConfirmed, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

// conflictStore fails the first n Update calls with ErrVersionConflict.
type conflictStore struct {
	Store
	mu   sync.Mutex
	left int
}

func (s *conflictStore) Update(ctx context.Context, o *Order, expectedVersion int64) error {
	s.mu.Lock()
	retry := s.left > 0
	if retry {
		s.left--
	}
	s.mu.Unlock()
	if retry {
		return ErrVersionConflict
	}
	return s.Store.Update(ctx, o, expectedVersion)
}

func TestUpdateStatusRetriesOnVersionConflict(t *testing.T) {
	svc, store, _ := newTestService(t)
	id, err := svc.Create(context.Background(), validOrder())
	require.NoError(t, err)

	svc.Store = &conflictStore{Store: store, left: 2}
	got, err := svc.UpdateStatus(context.Background(), id, StatusConfirmed, "")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)

	svc.Store = &conflictStore{Store: store, left: 10}
	_, err = svc.UpdateStatus(context.Background(), id, StatusPreparing, "")
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestListScoping(t *testing.T) {
	svc, _, _ := newTestService(t)

	first := validOrder()
	_, err := svc.Create(context.Background(), first)
	require.NoError(t, err)

	second := validOrder()
	second.TrackerID = "PL-TEST-0002"
	second.UserEmail = "sipho@example.com"
	_, err = svc.Create(context.Background(), second)
	require.NoError(t, err)

	all, err := svc.List(context.Background(), RoleAdmin, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	// newest first
	assert.Equal(t, "PL-TEST-0002", all[0].TrackerID)

	mine, err := svc.List(context.Background(), "customer", "thandi@example.com")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "PL-TEST-0001", mine[0].TrackerID)
}

func TestStats(t *testing.T) {
	svc, _, _ := newTestService(t)

	for i, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		o := validOrder()
		o.TrackerID = "PL-TEST-000" + string(rune('1'+i))
		o.UserEmail = email
		_, err := svc.Create(context.Background(), o)
		require.NoError(t, err)
	}
	_, err := svc.UpdateStatus(context.Background(), "PL-TEST-0002", StatusConfirmed, "")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), "PL-TEST-0003", StatusCancelled, "")
	require.NoError(t, err)

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalOrders)
	assert.Equal(t, 1, st.PendingOrders)
	assert.Equal(t, 560.0, st.TotalRevenue, "cancelled orders do not count toward revenue")
	assert.Equal(t, map[Status]int{StatusPlaced: 1, StatusConfirmed: 1, StatusCancelled: 1}, st.ByStatus)
}
