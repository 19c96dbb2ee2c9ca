package orders

import (
	"context"
	"sort"
	"sync"
)

// MemStore is a map-backed Store used in tests and local development.
type MemStore struct {
	mu     sync.RWMutex
	orders map[string]Order
}

func NewMemStore() *MemStore {
	return &MemStore{orders: make(map[string]Order)}
}

func (s *MemStore) Insert(ctx context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.TrackerID]; ok {
		return ErrTrackerExists
	}
	s.orders[o.TrackerID] = clone(o)
	return nil
}

func (s *MemStore) GetByTrackerID(ctx context.Context, trackerID string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[trackerID]
	if !ok {
		return nil, ErrNotFound
	}
	c := clone(&o)
	return &c, nil
}

func (s *MemStore) List(ctx context.Context) ([]Order, error) {
	return s.collect(func(Order) bool { return true }), nil
}

func (s *MemStore) ListByEmail(ctx context.Context, email string) ([]Order, error) {
	return s.collect(func(o Order) bool { return o.UserEmail == email }), nil
}

func (s *MemStore) Update(ctx context.Context, o *Order, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.orders[o.TrackerID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != expectedVersion {
		return ErrVersionConflict
	}
	s.orders[o.TrackerID] = clone(o)
	return nil
}

func (s *MemStore) DeleteInvalid(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id := range s.orders {
		if id == "" {
			delete(s.orders, id)
			n++
		}
	}
	return n, nil
}

func (s *MemStore) collect(keep func(Order) bool) []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, clone(&o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlacedAt.After(out[j].PlacedAt) })
	return out
}

func clone(o *Order) Order {
	c := *o
	c.Items = append([]Item(nil), o.Items...)
	c.Timeline = append([]TimelineEntry(nil), o.Timeline...)
	return c
}
