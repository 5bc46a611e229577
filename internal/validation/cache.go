package validation

import (
	"container/list"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

// resultCache memoizes validation results keyed by a hash of the source
// and the severity filter. LRU eviction bounds memory; entries store the
// post-aggregation Result, which is never mutated after insertion.
type resultCache struct {
	mu      sync.Mutex
	max     int
	order   *list.List // front = most recently used
	entries map[uint64]*list.Element
}

type cacheEntry struct {
	key    uint64
	result *Result
}

func newResultCache(maxEntries int) *resultCache {
	return &resultCache{
		max:     maxEntries,
		order:   list.New(),
		entries: make(map[uint64]*list.Element, maxEntries),
	}
}

func cacheKey(source string, filter types.Severity) uint64 {
	h := xxhash.New()
	h.WriteString(source)
	h.WriteString("\x00")
	h.WriteString(string(filter))
	h.WriteString(strconv.Itoa(len(source)))
	return h.Sum64()
}

func (c *resultCache) get(source string, filter types.Severity) (*Result, bool) {
	key := cacheKey(source, filter)

	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).result, true
}

func (c *resultCache) put(source string, filter types.Severity, result *Result) {
	key := cacheKey(source, filter)

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).result = result
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, result: result})
	for c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

// len reports the current entry count, for tests.
func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
