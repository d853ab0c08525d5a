// Package cart implements the shopping cart: an ordered list of lines keyed
// by food id, mirrored to durable storage after every mutation. The cart is
// single-writer for the lifetime of the process; cross-process consistency
// is last-writer-wins.
package cart

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fastorder/storefront/internal/model"
	"github.com/fastorder/storefront/internal/storage"
)

// Line is one cart entry. Quantity is always >= 1; at most one line exists
// per food.
type Line struct {
	FoodID    int64           `json:"food_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Cart owns the line list. All operations are total; persistence errors are
// logged, never surfaced, so local mutations cannot fail.
type Cart struct {
	mu    sync.Mutex
	lines []Line
	store storage.Store
}

// New loads any persisted cart from store. A corrupt persisted cart is
// discarded and replaced on the next mutation.
func New(store storage.Store) *Cart {
	c := &Cart{store: store}
	if raw, ok := store.Get(storage.KeyCart); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &c.lines); err != nil {
			log.Printf("ERROR: discarding unreadable persisted cart: %v", err)
			c.lines = nil
		}
	}
	return c
}

// Add puts food in the cart: a new line with quantity 1, or +1 on the
// existing line for the same food.
func (c *Cart) Add(food model.Food) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].FoodID == food.ID {
			c.lines[i].Quantity++
			c.persist()
			return
		}
	}
	c.lines = append(c.lines, Line{
		FoodID:    food.ID,
		Name:      food.Name,
		UnitPrice: food.Price,
		Quantity:  1,
	})
	c.persist()
}

// Increase adds 1 to the line for foodID. Unknown ids are ignored.
func (c *Cart) Increase(foodID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].FoodID == foodID {
			c.lines[i].Quantity++
			c.persist()
			return
		}
	}
}

// Decrease subtracts 1 from the line for foodID, floored at 1. It never
// removes a line; use Remove for that.
func (c *Cart) Decrease(foodID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].FoodID == foodID {
			if c.lines[i].Quantity > 1 {
				c.lines[i].Quantity--
				c.persist()
			}
			return
		}
	}
}

// Remove deletes the line for foodID unconditionally.
func (c *Cart) Remove(foodID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].FoodID == foodID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			c.persist()
			return
		}
	}
}

// Clear empties the cart. Called after an order is successfully placed and
// on logout/session invalidation.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
	c.persist()
}

// Count is the sum of quantities over all lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Total is Σ(unit price × quantity), recomputed on demand.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Lines returns a snapshot of the current lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// persist mirrors the full line list to storage. Caller must hold mu.
func (c *Cart) persist() {
	lines := c.lines
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		log.Printf("ERROR: encode cart: %v", err)
		return
	}
	if err := c.store.Set(storage.KeyCart, string(data)); err != nil {
		log.Printf("ERROR: persist cart: %v", err)
	}
}
