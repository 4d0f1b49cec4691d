package handlers

import (
	"sync"
	"time"

	"github.com/usagetop/usagetop/internal/model"
)

// reportCache keeps recently built reports so a dashboard refresh does
// not replay a month of upstream requests. Entries expire by age; there
// is no persistence.
type reportCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	report   *model.UsageReport
	storedAt time.Time
}

func newReportCache(ttl time.Duration) *reportCache {
	return &reportCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *reportCache) get(key string) (*model.UsageReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.report, true
}

func (c *reportCache) put(key string, report *model.UsageReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{report: report, storedAt: time.Now()}
}
