package util

import (
	"sync"
	"sync/atomic"
)

// SlicePool pools scratch slices by length. Coders allocate one context id
// and one history slice per coded unit, this lets short lived coders reuse
// them.
type SlicePool[T any] struct {
	pools map[int]*sync.Pool
	mu    sync.RWMutex

	// Metrics
	hits   atomic.Int64
	misses atomic.Int64
}

func NewSlicePool[T any]() *SlicePool[T] {
	return &SlicePool[T]{pools: make(map[int]*sync.Pool)}
}

var (
	uint32Pool = NewSlicePool[uint32]()
	uint64Pool = NewSlicePool[uint64]()
)

// Get retrieves a zeroed slice of length n from the pool or creates a new one
func (p *SlicePool[T]) Get(n int) []T {
	if n <= 0 {
		return make([]T, 0)
	}

	// Fast path: read lock
	p.mu.RLock()
	pool, exists := p.pools[n]
	p.mu.RUnlock()

	if exists {
		if s := pool.Get(); s != nil {
			p.hits.Add(1)
			return *(s.(*[]T))
		}
	} else {
		p.mu.Lock()
		// Double-check after acquiring write lock
		if _, exists = p.pools[n]; !exists {
			p.pools[n] = &sync.Pool{}
		}
		p.mu.Unlock()
	}

	p.misses.Add(1)
	return make([]T, n)
}

// Put clears s and returns it to the pool for its length. Slices of a length
// never handed out by Get are dropped.
func (p *SlicePool[T]) Put(s []T) {
	if len(s) == 0 {
		return
	}

	p.mu.RLock()
	pool, exists := p.pools[len(s)]
	p.mu.RUnlock()

	if exists {
		clear(s)
		pool.Put(&s)
	}
}

// GetMetrics returns pool usage statistics
func (p *SlicePool[T]) GetMetrics() (hits, misses int64) {
	return p.hits.Load(), p.misses.Load()
}

// GetUint32Slice hands out scratch context id slices.
func GetUint32Slice(n int) []uint32 {
	return uint32Pool.Get(n)
}

func ReturnUint32Slice(s []uint32) {
	uint32Pool.Put(s)
}

// GetUint64Slice hands out scratch symbol history slices.
func GetUint64Slice(n int) []uint64 {
	return uint64Pool.Get(n)
}

func ReturnUint64Slice(s []uint64) {
	uint64Pool.Put(s)
}

// GetPoolMetrics returns metrics for all pools
func GetPoolMetrics() map[string]map[string]int64 {
	u32Hits, u32Misses := uint32Pool.GetMetrics()
	u64Hits, u64Misses := uint64Pool.GetMetrics()

	return map[string]map[string]int64{
		"uint32": {
			"hits":   u32Hits,
			"misses": u32Misses,
		},
		"uint64": {
			"hits":   u64Hits,
			"misses": u64Misses,
		},
	}
}
