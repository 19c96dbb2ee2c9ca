package redisx

import "time"

const (
	// Cached order snapshot for tracking lookups: order:{tracker_id} -> JSON order
	KeyOrder = "order:%s"

	// Dedup for event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Pub/sub channel carrying order change notices to connected clients.
	// The shared named channel every client listens on; the same role the
	// browser BroadcastChannel plays between tabs.
	ChannelOrders = "kitchen:orders:updates"

	// Pub/sub channel on which polling clients share full order snapshots.
	ChannelSnapshots = "kitchen:orders:snapshots"
)

var (
	TTLOrderCache = 5 * time.Minute
	TTLDedup      = 48 * time.Hour
)
