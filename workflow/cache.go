package workflow

import (
	"sync"
	"time"
)

// Cache holds the last offer search result so screens can reuse it without
// refetching. A new search overwrites the previous entry (last writer wins);
// entries are never persisted.
type Cache interface {
	Get() ([]Offer, time.Time, bool)
	Set(offers []Offer)
	Invalidate()
}

// MemoryCache is the process-wide single-entry cache with an explicit TTL.
// A zero TTL means entries never expire on read; staleness is then only
// resolved by the next search overwriting them.
type MemoryCache struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time

	offers []Offer
	ts     time.Time
	valid  bool
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Get() ([]Offer, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		return nil, time.Time{}, false
	}
	if c.ttl > 0 && c.now().Sub(c.ts) > c.ttl {
		return nil, time.Time{}, false
	}
	return c.offers, c.ts, true
}

func (c *MemoryCache) Set(offers []Offer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offers = offers
	c.ts = c.now()
	c.valid = true
}

func (c *MemoryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offers = nil
	c.valid = false
}

// NoOpCache disables reuse between stages; every search hits the backend.
type NoOpCache struct{}

func (NoOpCache) Get() ([]Offer, time.Time, bool) { return nil, time.Time{}, false }
func (NoOpCache) Set([]Offer)                     {}
func (NoOpCache) Invalidate()                     {}
