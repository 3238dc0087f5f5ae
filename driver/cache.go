package driver

import (
	"container/list"
	"sync"

	"github.com/armon/go-metrics"
	"github.com/dchest/siphash"
)

var (
	metricsKeyCacheHit   = []string{"relq", "stmt_cache", "hit"}
	metricsKeyCacheMiss  = []string{"relq", "stmt_cache", "miss"}
	metricsKeyCacheEvict = []string{"relq", "stmt_cache", "evict"}
)

// StatementCache is an LRU cache from SQL text to a prepared-statement
// handle, keyed by a SipHash-2-4 digest of the SQL so the map itself
// never retains the full statement text. Move-to-tail on hit, evict
// from head on over-capacity, per spec.md's prepared-statement cache
// design.
type StatementCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = least recently used, back = most recently used
	entries  map[uint64]*list.Element
	k0, k1   uint64
}

type cacheEntry struct {
	key    uint64
	handle StatementHandle
}

// NewStatementCache builds a cache holding at most capacity entries.
// k0/k1 seed the SipHash key; callers that need cache keys stable
// across restarts should supply a fixed pair, otherwise any value
// works since the digest is only used as an in-process lookup key.
func NewStatementCache(capacity int, k0, k1 uint64) *StatementCache {
	return &StatementCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[uint64]*list.Element),
		k0:       k0,
		k1:       k1,
	}
}

func (c *StatementCache) hash(sql string) uint64 {
	return siphash.Hash(c.k0, c.k1, []byte(sql))
}

// Get looks up the handle prepared for sql, moving it to the
// most-recently-used position on a hit.
func (c *StatementCache) Get(sql string) (StatementHandle, bool) {
	key := c.hash(sql)
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		metrics.IncrCounter(metricsKeyCacheMiss, 1)
		return nil, false
	}
	c.order.MoveToBack(el)
	metrics.IncrCounter(metricsKeyCacheHit, 1)
	return el.Value.(*cacheEntry).handle, true
}

// Put records handle as the prepared statement for sql, evicting the
// least-recently-used entry if the cache is at capacity.
func (c *StatementCache) Put(sql string, handle StatementHandle) {
	key := c.hash(sql)
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).handle = handle
		c.order.MoveToBack(el)
		return
	}
	if c.capacity > 0 && len(c.entries) >= c.capacity {
		front := c.order.Front()
		if front != nil {
			c.order.Remove(front)
			delete(c.entries, front.Value.(*cacheEntry).key)
			metrics.IncrCounter(metricsKeyCacheEvict, 1)
		}
	}
	el := c.order.PushBack(&cacheEntry{key: key, handle: handle})
	c.entries[key] = el
}

// Len reports the number of cached statements.
func (c *StatementCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
