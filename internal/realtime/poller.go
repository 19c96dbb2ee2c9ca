package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/pamlee/kitchen/internal/orders"
	"github.com/rs/zerolog"
)

// DefaultInterval matches the dashboards' refresh period.
const DefaultInterval = 5 * time.Second

// StatusChange is emitted when a poll observes an order whose status
// differs from the previous snapshot.
type StatusChange struct {
	TrackerID string
	From      orders.Status
	To        orders.Status
	Order     orders.Order
}

// Poller keeps a local snapshot of the order list near-real-time by
// fetching on a fixed interval. Each successful fetch fully replaces the
// snapshot, persists it to the cache, shares it on the broadcast channel
// and fans it out to local subscribers. A failed fetch falls back to the
// last cached snapshot rather than surfacing an error or an empty list.
type Poller struct {
	Client    Client
	Interval  time.Duration
	Cache     *SnapshotCache // optional
	Broadcast Broadcaster    // optional
	Log       zerolog.Logger

	mu          sync.Mutex
	cancel      context.CancelFunc
	done        chan struct{}
	snapshot    []orders.Order
	hasSnapshot bool
	subs        map[int]func([]orders.Order)
	changeSubs  map[int]func(StatusChange)
	nextID      int
}

func NewPoller(client Client, log zerolog.Logger) *Poller {
	return &Poller{Client: client, Interval: DefaultInterval, Log: log}
}

// Start begins the polling cycle: one immediate fetch, then one fetch per
// interval. Calling Start while a cycle is running stops the old cycle
// first, so there is never more than one timer. The cycle ends when ctx is
// cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.Stop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	if p.Broadcast != nil {
		go func() {
			if err := p.Broadcast.Listen(ctx, p.applyRemote); err != nil {
				p.Log.Warn().Err(err).Msg("broadcast listener stopped")
			}
		}()
	}

	go func() {
		defer close(done)

		interval := p.Interval
		if interval <= 0 {
			interval = DefaultInterval
		}

		p.fetch(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.fetch(ctx)
			}
		}
	}()
}

// Stop cancels the polling cycle. Safe to call when not running.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Refresh performs one out-of-cycle fetch, used right after a mutation so
// the acting client does not wait for the next tick.
func (p *Poller) Refresh(ctx context.Context) {
	p.fetch(ctx)
}

// UpdateStatus applies an admin status change and immediately refetches so
// the actor's own view reflects it.
func (p *Poller) UpdateStatus(ctx context.Context, trackerID string, status orders.Status, note string) error {
	if err := p.Client.UpdateStatus(ctx, trackerID, status, note); err != nil {
		return err
	}
	p.Refresh(ctx)
	return nil
}

// Subscribe registers a callback for every new snapshot. If a snapshot
// already exists the callback fires immediately, so late subscribers do
// not wait a full interval. The returned function unsubscribes.
func (p *Poller) Subscribe(cb func([]orders.Order)) func() {
	p.mu.Lock()
	if p.subs == nil {
		p.subs = make(map[int]func([]orders.Order))
	}
	id := p.nextID
	p.nextID++
	p.subs[id] = cb
	replay := p.hasSnapshot
	snapshot := p.snapshot
	p.mu.Unlock()

	if replay {
		cb(snapshot)
	}
	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// SubscribeChanges registers a callback for per-order status transitions
// detected between consecutive snapshots (used for notifications).
func (p *Poller) SubscribeChanges(cb func(StatusChange)) func() {
	p.mu.Lock()
	if p.changeSubs == nil {
		p.changeSubs = make(map[int]func(StatusChange))
	}
	id := p.nextID
	p.nextID++
	p.changeSubs[id] = cb
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.changeSubs, id)
		p.mu.Unlock()
	}
}

// Snapshot returns the current local snapshot.
func (p *Poller) Snapshot() []orders.Order {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

func (p *Poller) fetch(ctx context.Context) {
	list, err := p.Client.ListOrders(ctx)
	if err != nil {
		p.Log.Warn().Err(err).Msg("order fetch failed, serving cached snapshot")
		if p.Cache == nil {
			return
		}
		cached, cerr := p.Cache.Load()
		if cerr != nil {
			p.Log.Error().Err(cerr).Msg("snapshot cache unreadable")
			return
		}
		p.apply(ctx, cached, false)
		return
	}
	p.apply(ctx, list, true)
}

// applyRemote handles snapshots broadcast by other clients. They replace
// the local snapshot and reach subscribers, but are not re-broadcast and
// not written to the cache; the originating client already did both.
func (p *Poller) applyRemote(snapshot []orders.Order) {
	p.apply(context.Background(), snapshot, false)
}

func (p *Poller) apply(ctx context.Context, snapshot []orders.Order, fresh bool) {
	p.mu.Lock()
	prev := make(map[string]orders.Status, len(p.snapshot))
	if p.hasSnapshot {
		for _, o := range p.snapshot {
			prev[o.TrackerID] = o.Status
		}
	}
	hadSnapshot := p.hasSnapshot
	p.snapshot = snapshot
	p.hasSnapshot = true

	subs := make([]func([]orders.Order), 0, len(p.subs))
	for _, cb := range p.subs {
		subs = append(subs, cb)
	}
	changeSubs := make([]func(StatusChange), 0, len(p.changeSubs))
	for _, cb := range p.changeSubs {
		changeSubs = append(changeSubs, cb)
	}
	p.mu.Unlock()

	if fresh {
		if p.Cache != nil {
			if err := p.Cache.Save(snapshot); err != nil {
				p.Log.Warn().Err(err).Msg("persist snapshot cache")
			}
		}
		if p.Broadcast != nil {
			if err := p.Broadcast.Publish(ctx, snapshot); err != nil {
				p.Log.Warn().Err(err).Msg("broadcast snapshot")
			}
		}
	}

	for _, cb := range subs {
		cb(snapshot)
	}

	if hadSnapshot && len(changeSubs) > 0 {
		for _, o := range snapshot {
			before, ok := prev[o.TrackerID]
			if !ok || before == o.Status {
				continue
			}
			ev := StatusChange{TrackerID: o.TrackerID, From: before, To: o.Status, Order: o}
			for _, cb := range changeSubs {
				cb(ev)
			}
		}
	}
}
