package trie

// MapDedup is the simplest SegmentDedup: an unbounded map from a segment's
// original byte content to the descriptor it was first stored under. It
// has no eviction, so it is best suited to tests and bulk loads of a known
// bounded size; the loader package's LRU-backed dedup covers the unbounded
// production case.
type MapDedup struct {
	m map[string]uint32
}

// NewMapDedup returns an empty MapDedup.
func NewMapDedup() *MapDedup {
	return &MapDedup{m: make(map[string]uint32)}
}

func (d *MapDedup) Lookup(segment []byte) (uint32, bool) {
	desc, ok := d.m[string(segment)]
	return desc, ok
}

func (d *MapDedup) Record(segment []byte, descriptor uint32) {
	d.m[string(segment)] = descriptor
}
