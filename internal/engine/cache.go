package engine

import "sync"

// Inspection records keyed by image reference.
//
// Entries are added by successful inspections and never evicted. A cache
// lives as long as the launcher that owns it.
type Cache struct {
	mu      sync.Mutex
	records map[string]*Record
}

// Creates an empty cache.
func NewCache() *Cache {
	return &Cache{records: make(map[string]*Record)}
}

// Returns the record stored for ref.
func (c *Cache) Get(ref string) (*Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[ref]
	return rec, ok
}

// Returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.records)
}

func (c *Cache) put(ref string, rec *Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records[ref] = rec
}
