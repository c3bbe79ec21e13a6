package loader

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/minio/highwayhash"
)

// highwayKey is a fixed all-zero key for highwayhash. Dedup digests never
// leave this process, so there is no need for a secret or per-run key; a
// fixed key just needs to distribute well, which highwayhash does
// regardless of key value.
var highwayKey = make([]byte, 32)

// LRUDedup is a bounded trie.SegmentDedup backed by a highwayhash-64 digest
// of each segment's content, so that a multi-hundred-thousand-hostname bulk
// load doesn't grow a dedup assist without bound the way an unbounded map
// would. An occasional eviction just means a later Add stores a duplicate
// segment instead of reusing one; it never affects match correctness.
type LRUDedup struct {
	cache *lru.Cache[uint64, uint32]
}

// NewLRUDedup returns an LRUDedup holding at most size entries.
func NewLRUDedup(size int) (*LRUDedup, error) {
	cache, err := lru.New[uint64, uint32](size)
	if err != nil {
		return nil, err
	}
	return &LRUDedup{cache: cache}, nil
}

func digest(segment []byte) uint64 {
	return highwayhash.Sum64(segment, highwayKey)
}

// Lookup implements trie.SegmentDedup.
func (d *LRUDedup) Lookup(segment []byte) (uint32, bool) {
	return d.cache.Get(digest(segment))
}

// Record implements trie.SegmentDedup.
func (d *LRUDedup) Record(segment []byte, descriptor uint32) {
	d.cache.Add(digest(segment), descriptor)
}

// countingDedup wraps an LRUDedup to report hits against a Metrics, so a
// bulk load's dedup effectiveness is observable without the dedup cache
// itself needing to know about Prometheus.
type countingDedup struct {
	*LRUDedup
	metrics *Metrics
}

func (d *countingDedup) Lookup(segment []byte) (uint32, bool) {
	desc, ok := d.LRUDedup.Lookup(segment)
	if ok && d.metrics != nil {
		d.metrics.dedupHits.Inc()
	}
	return desc, ok
}
