package service

import (
	"sync"

	"inventory-service/internal/inventory"
)

// catalog is the insertion-ordered set of products every read is served from.
// Its lock only guards the map and ordering; callers serialize read-modify-write
// of one product through keyLocks.
type catalog struct {
	mu    sync.RWMutex
	order []string
	items map[string]inventory.Product
}

func newCatalog() *catalog {
	return &catalog{items: make(map[string]inventory.Product)}
}

func (c *catalog) get(id string) (inventory.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.items[id]
	return p, ok
}

// insert adds p at the end of the ordering. It reports false, leaving the
// catalog untouched, when the id is already present.
func (c *catalog) insert(p inventory.Product) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[p.ID]; ok {
		return false
	}
	c.items[p.ID] = p
	c.order = append(c.order, p.ID)
	return true
}

// replace stores p, keeping the position of an existing entry.
func (c *catalog) replace(p inventory.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[p.ID]; !ok {
		c.order = append(c.order, p.ID)
	}
	c.items[p.ID] = p
}

func (c *catalog) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// filter returns, in insertion order, the products keep accepts.
func (c *catalog) filter(keep func(inventory.Product) bool) []inventory.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list := make([]inventory.Product, 0)
	for _, id := range c.order {
		if p := c.items[id]; keep(p) {
			list = append(list, p)
		}
	}
	return list
}

// page returns the products of the 1-based page of the given size and the
// total size. Pages past the end, however large, are empty.
func (c *catalog) page(page, size int) ([]inventory.Product, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := len(c.order)
	if page < 1 || size < 1 {
		return make([]inventory.Product, 0), total
	}
	pages := total / size
	if total%size != 0 {
		pages++
	}
	if page-1 >= pages {
		return make([]inventory.Product, 0), total
	}
	offset := (page - 1) * size
	end := offset + size
	if end > total {
		end = total
	}
	list := make([]inventory.Product, 0, end-offset)
	for _, id := range c.order[offset:end] {
		list = append(list, c.items[id])
	}
	return list, total
}
