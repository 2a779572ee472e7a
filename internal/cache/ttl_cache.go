// Package cache implements the per-incident AgentData TTL cache.
// Ported near-literally from original_source/backend/cache/agent_cache.py's
// map+mutex+lazy-expiry-on-get design — the clearest 1:1 algorithmic source
// in the whole project.
package cache

import (
	"sync"
	"time"

	"smartrecover.dev/engine/internal/domain"
)

const DefaultTTL = 5 * time.Minute

type entry struct {
	data      domain.AgentData
	expiresAt time.Time
}

// TTLCache memoizes AgentData per incident ID so chat follow-ups reuse the
// orchestrator's retrieval work. Safe for concurrent use.
type TTLCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
}

func New(ttl time.Duration) *TTLCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTLCache{entries: make(map[string]entry), ttl: ttl}
}

// Get returns the cached AgentData and true if present and unexpired.
// An expired entry is removed as a side effect of the lookup (lazy expiry).
func (c *TTLCache) Get(incidentID string) (domain.AgentData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[incidentID]
	if !ok {
		return domain.AgentData{}, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, incidentID)
		return domain.AgentData{}, false
	}
	return e.data, true
}

// Put stores data for incidentID, expiring after the cache's configured TTL.
func (c *TTLCache) Put(incidentID string, data domain.AgentData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[incidentID] = entry{data: data, expiresAt: time.Now().Add(c.ttl)}
}

// PutWithTTL stores data for incidentID with an explicit TTL override.
func (c *TTLCache) PutWithTTL(incidentID string, data domain.AgentData, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[incidentID] = entry{data: data, expiresAt: time.Now().Add(ttl)}
}

// Invalidate removes any cached entry for incidentID.
func (c *TTLCache) Invalidate(incidentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, incidentID)
}

// Clear empties the cache entirely.
func (c *TTLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}
