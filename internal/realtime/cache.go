package realtime

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pamlee/kitchen/internal/orders"
)

// SnapshotCache keeps the last known order list on disk so a failed fetch
// degrades to stale data instead of an empty dashboard.
type SnapshotCache struct {
	Path string
}

func (c *SnapshotCache) Load() ([]orders.Order, error) {
	b, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return []orders.Order{}, nil
		}
		return nil, err
	}
	var out []orders.Order
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SnapshotCache) Save(snapshot []orders.Order) error {
	b, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	tmp := c.Path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.Path)
}
