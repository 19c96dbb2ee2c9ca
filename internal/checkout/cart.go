package checkout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pamlee/kitchen/internal/catalog"
	"github.com/pamlee/kitchen/internal/orders"
)

// Cart is the client-local, ephemeral cart: unique per product id, no
// server-side representation until checkout turns it into an order.
// When Path is set the contents survive restarts.
type Cart struct {
	Path string

	mu    sync.Mutex
	items []orders.Item
}

// Load reads a previously persisted cart. A missing file is an empty cart.
func (c *Cart) Load() error {
	if c.Path == "" {
		return nil
	}
	b, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return json.Unmarshal(b, &c.items)
}

// Add puts one unit of p in the cart, bumping quantity when already there.
func (c *Cart) Add(p catalog.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ProductID == p.ID {
			c.items[i].Quantity++
			c.persistLocked()
			return
		}
	}
	c.items = append(c.items, orders.Item{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: 1})
	c.persistLocked()
}

// AdjustQuantity changes an item's quantity by delta, removing the item
// when it drops to zero or below.
func (c *Cart) AdjustQuantity(productID string, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ProductID != productID {
			continue
		}
		c.items[i].Quantity += delta
		if c.items[i].Quantity < 1 {
			c.items = append(c.items[:i], c.items[i+1:]...)
		}
		c.persistLocked()
		return
	}
}

func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.persistLocked()
			return
		}
	}
}

func (c *Cart) Items() []orders.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]orders.Item(nil), c.items...)
}

func (c *Cart) Subtotal() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, it := range c.items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.persistLocked()
}

func (c *Cart) persistLocked() {
	if c.Path == "" {
		return
	}
	b, err := json.Marshal(c.items)
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(c.Path), 0o755)
	_ = os.WriteFile(c.Path, b, 0o644)
}
