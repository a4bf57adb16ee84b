package application

import (
	"fmt"
	"sync"
	"time"
)

// slotCache stores recently computed slot listings to avoid re-running the
// generator for identical queries while the professional's calendar remains
// unchanged. Any booking or availability write for a professional invalidates
// that professional's entries.
type slotCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]slotCacheEntry
}

type slotCacheEntry struct {
	professionalID string
	slots          []Slot
	expiresAt      time.Time
}

func newSlotCache(ttl time.Duration, maxEntries int, now func() time.Time) *slotCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &slotCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]slotCacheEntry),
	}
}

func slotCacheKey(params GetAvailableSlotsParams) string {
	return fmt.Sprintf("%s|%d|%d|%d", params.ProfessionalID, params.From.Unix(), params.To.Unix(), params.DurationMinutes)
}

func (c *slotCache) Get(key string) ([]Slot, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneSlots(entry.slots), true
}

func (c *slotCache) Set(key, professionalID string, slots []Slot) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[key] = slotCacheEntry{
		professionalID: professionalID,
		slots:          cloneSlots(slots),
		expiresAt:      c.now().Add(c.ttl),
	}
}

// Invalidate drops every cached listing for the professional.
func (c *slotCache) Invalidate(professionalID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if entry.professionalID == professionalID {
			delete(c.entries, key)
		}
	}
}

// evictLocked removes expired entries, falling back to the entry closest to
// expiry when nothing has expired yet.
func (c *slotCache) evictLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}

	var oldestKey string
	var oldest time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldest) {
			oldestKey = key
			oldest = entry.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func cloneSlots(slots []Slot) []Slot {
	if slots == nil {
		return nil
	}
	out := make([]Slot, len(slots))
	copy(out, slots)
	return out
}
