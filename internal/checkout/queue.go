package checkout

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pamlee/kitchen/internal/orders"
	"github.com/rs/zerolog"
)

// PendingQueue holds orders that could not reach the server. Queued orders
// are explicitly pending, never presented as confirmed; Flush retries them.
type PendingQueue struct {
	Path string
	Log  zerolog.Logger

	mu sync.Mutex
}

func (q *PendingQueue) Enqueue(o orders.Order) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	pending, err := q.loadLocked()
	if err != nil {
		return err
	}
	pending = append(pending, o)
	return q.saveLocked(pending)
}

func (q *PendingQueue) List() ([]orders.Order, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.loadLocked()
}

// Flush retries every queued order against submit. Orders accepted by the
// server (or rejected as duplicates of an earlier successful retry) leave
// the queue; the rest stay for the next flush. Returns how many cleared.
func (q *PendingQueue) Flush(ctx context.Context, submit func(context.Context, *orders.Order) (string, error)) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending, err := q.loadLocked()
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	var remaining []orders.Order
	cleared := 0
	for i := range pending {
		o := pending[i]
		_, err := submit(ctx, &o)
		switch {
		case err == nil, isDuplicate(err):
			cleared++
		default:
			q.Log.Warn().Err(err).Str("tracker_id", o.TrackerID).Msg("pending order retry failed")
			remaining = append(remaining, o)
		}
	}
	if err := q.saveLocked(remaining); err != nil {
		return cleared, err
	}
	return cleared, nil
}

// isDuplicate recognizes a retry of an order the server already accepted.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "tracker id already exists")
}

func (q *PendingQueue) loadLocked() ([]orders.Order, error) {
	b, err := os.ReadFile(q.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []orders.Order
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (q *PendingQueue) saveLocked(pending []orders.Order) error {
	if pending == nil {
		pending = []orders.Order{}
	}
	b, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	_ = os.MkdirAll(filepath.Dir(q.Path), 0o755)
	return os.WriteFile(q.Path, b, 0o644)
}
