// Package eventcache adapts the generic TTL cache to the EventCache port,
// keyed by order id.
package eventcache

import (
	"time"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/event"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/pkg/cache"
)

// Cache holds per-order event trails with a TTL. Command handlers invalidate
// an order's entry on every committed mutation; a scheduled janitor reclaims
// expired entries.
type Cache struct {
	inner *cache.TTLCache[kernel.UUID, []event.WorkOrderEvent]
}

// New creates an empty event cache.
func New() *Cache {
	return &Cache{
		inner: cache.NewTTLCache[kernel.UUID, []event.WorkOrderEvent](),
	}
}

// Get returns the cached trail for an order, if a live entry exists.
func (c *Cache) Get(orderID kernel.UUID) ([]event.WorkOrderEvent, bool) {
	return c.inner.Get(orderID)
}

// Set stores an order's trail for ttl.
func (c *Cache) Set(orderID kernel.UUID, events []event.WorkOrderEvent, ttl time.Duration) {
	c.inner.Set(orderID, events, ttl)
}

// Invalidate drops an order's cached trail.
func (c *Cache) Invalidate(orderID kernel.UUID) {
	c.inner.Invalidate(orderID)
}

// Sweep reclaims expired entries and returns how many were removed.
func (c *Cache) Sweep() int {
	return c.inner.Sweep()
}

// Len returns the number of entries currently held.
func (c *Cache) Len() int {
	return c.inner.Len()
}
