package securities

import (
	"sync"
	"time"
)

// ReferenceCache remembers securities reconciled from earlier documents so
// later ones can fill gaps (a statement often omits the name once the
// identifier is printed). It is an explicit object passed into the engine,
// never package-level state, and entries expire after a TTL; Sweep is run
// on a schedule by the caller.
type ReferenceCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time // overridable in tests
}

// CacheEntry is the reusable slice of a previously reconciled security.
type CacheEntry struct {
	Name     *string
	Currency *string
}

type cacheEntry struct {
	name     string
	hasName  bool
	currency string
	hasCCY   bool
	storedAt time.Time
}

// NewReferenceCache creates a cache whose entries expire after ttl.
// A zero ttl means entries never expire.
func NewReferenceCache(ttl time.Duration) *ReferenceCache {
	return &ReferenceCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Lookup returns the cached entry for an identifier, honoring the TTL.
func (c *ReferenceCache) Lookup(id string) (CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok || c.expired(e) {
		return CacheEntry{}, false
	}
	out := CacheEntry{}
	if e.hasName {
		name := e.name
		out.Name = &name
	}
	if e.hasCCY {
		ccy := e.currency
		out.Currency = &ccy
	}
	return out, true
}

// Store records the reusable fields of a reconciled security. Values are
// copied; the cache never aliases caller memory.
func (c *ReferenceCache) Store(sec CanonicalSecurity) {
	if sec.Identifier == nil {
		return
	}
	e := cacheEntry{storedAt: c.now()}
	if sec.Name != nil {
		e.name, e.hasName = *sec.Name, true
	}
	if sec.Currency != nil {
		e.currency, e.hasCCY = *sec.Currency, true
	}
	c.mu.Lock()
	c.entries[*sec.Identifier] = e
	c.mu.Unlock()
}

// Sweep drops expired entries and returns how many were evicted.
func (c *ReferenceCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	evicted := 0
	for id, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, id)
			evicted++
		}
	}
	return evicted
}

// Len returns the live entry count, including not-yet-swept expired ones.
func (c *ReferenceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *ReferenceCache) expired(e cacheEntry) bool {
	if c.ttl <= 0 {
		return false
	}
	return c.now().Sub(e.storedAt) > c.ttl
}
