package trie

import (
	"fmt"
	"unsafe"

	"github.com/quietdns/hosttrie/trie/xaccel"
	"github.com/quietdns/hosttrie/trieerr"
)

// TrieRef identifies one root within a Container. Multiple tries in the same
// Container share a single segment pool but never share cells.
type TrieRef struct {
	iroot uint32
}

// SegmentDedup lets construction-time segment allocation be deduplicated
// against previously stored segments. Implementations are consulted with the
// segment's original (non-reversed) byte content; Container never persists
// a SegmentDedup across a restore or an Optimize call, since it is purely a
// construction-time assist and correctness never depends on it.
type SegmentDedup interface {
	Lookup(segment []byte) (descriptor uint32, ok bool)
	Record(segment []byte, descriptor uint32)
}

// Backend selects which matcher implementation Container.Matches uses.
type Backend int

const (
	// BackendAuto picks the accelerated native matcher when it is both
	// compiled in and the host is little-endian, and falls back to the
	// portable scalar matcher otherwise. This is the default.
	BackendAuto Backend = iota
	// BackendScalar forces the pure-Go matcher regardless of what the
	// native accelerator reports.
	BackendScalar
)

// Container owns one linear buffer laid out as described in the package
// doc: a needle scratch area, a header, a cell region, and a segment pool.
// It is not safe for concurrent use; callers that mutate and query from
// multiple goroutines must provide their own exclusion.
type Container struct {
	buf       []byte
	dedup     SegmentDedup
	backend   Backend
	useNative bool
}

// Option configures a Container at construction time.
type Option func(*Container)

// WithInitialSize overrides the default initial buffer length and segment
// pool start. Both are rounded up to a 4-byte boundary.
func WithInitialSize(bufLen, charStart int) Option {
	return func(c *Container) {
		c.buf = make([]byte, roundUp(uint32(bufLen), 4))
		writeU32(c.buf, char0Word, roundUp(uint32(charStart), 4))
	}
}

// WithSegmentDedup installs a construction-time segment dedup assist.
func WithSegmentDedup(d SegmentDedup) Option {
	return func(c *Container) { c.dedup = d }
}

// SetDedup installs or replaces the segment dedup assist on an existing
// Container, for callers (such as the loader package) that only decide on
// a dedup strategy once a Container has already been constructed or
// restored. As with WithSegmentDedup, this is purely a construction-time
// assist: it is never itself persisted by Bytes or reattached by Restore.
func (c *Container) SetDedup(d SegmentDedup) {
	c.dedup = d
}

// WithBackend forces a specific matcher backend instead of auto-detection.
func WithBackend(b Backend) Option {
	return func(c *Container) { c.backend = b }
}

// NewContainer allocates a fresh, empty Container.
func NewContainer(opts ...Option) *Container {
	c := &Container{
		backend: BackendAuto,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.buf == nil {
		c.buf = make([]byte, initialBufLen)
		c.initHeader(initialCharStart, uint32(initialBufLen))
	} else {
		char0 := c.char0()
		if char0 == 0 {
			char0 = initialCharStart
		}
		c.initHeader(char0, uint32(len(c.buf)))
	}
	c.useNative = c.backend == BackendAuto && xaccel.Available() && littleEndianHost()
	return c
}

func (c *Container) initHeader(char0, bufLen uint32) {
	writeU32(c.buf, trie0Word, cellRegionStart)
	writeU32(c.buf, trie1Word, cellRegionStart)
	writeU32(c.buf, char0Word, char0)
	writeU32(c.buf, char1Word, char0)
	_ = bufLen
}

// NewTrie allocates a fresh, empty root within the Container and returns a
// reference to it. The root cell starts with down=right=seg=0; the first
// Add against it takes Add's "empty trie" fast path, writing the first
// segment straight into the root cell.
func (c *Container) NewTrie() (TrieRef, error) {
	w, err := c.allocCell(0, 0, 0)
	if err != nil {
		return TrieRef{}, err
	}
	return TrieRef{iroot: w}, nil
}

// FirstRoot returns the TrieRef of the first trie allocated in a freshly
// constructed or restored Container, i.e. the result of the first call to
// NewTrie against an empty Container. Tools that only ever keep one trie
// per Container (the CLI tools in cmd/) use this to recover a usable
// TrieRef after Restore without having to persist it separately.
func FirstRoot() TrieRef {
	return TrieRef{iroot: cellRegionStart / 4}
}

// Reset clears every trie rooted in this Container without releasing the
// underlying buffer; all previously returned TrieRef values become invalid.
func (c *Container) Reset() {
	char0 := c.char0()
	if char0 < cellRegionStart+minCellHeadroom {
		char0 = initialCharStart
	}
	c.initHeader(char0, uint32(len(c.buf)))
	c.dedup = nil
}

// Bytes returns the Container's backing buffer. The slice aliases Container
// state; callers must not retain or mutate it concurrently with further
// Container use.
func (c *Container) Bytes() []byte {
	return c.buf
}

// Restore wraps an existing serialized buffer (as produced by Bytes, usually
// after Optimize) as a Container. The buffer's self-relative layout means no
// fix-up is required; restoring is just validating the header and keeping
// the slice.
func Restore(buf []byte, opts ...Option) (*Container, error) {
	if len(buf) < cellRegionStart {
		return nil, trieerr.New(trieerr.Malformed, "buffer too small to hold a header: %d bytes", len(buf))
	}
	c := &Container{buf: buf, backend: BackendAuto}
	for _, opt := range opts {
		opt(c)
	}
	if c.trie0() != cellRegionStart {
		return nil, trieerr.New(trieerr.Malformed, "unexpected TRIE0 %d, want %d", c.trie0(), cellRegionStart)
	}
	if c.trie1() > c.char0() || c.char0() > c.char1() || uint32(len(c.buf)) < c.char1() {
		return nil, trieerr.New(trieerr.Malformed, "header regions out of order: trie1=%d char0=%d char1=%d len=%d",
			c.trie1(), c.char0(), c.char1(), len(c.buf))
	}
	c.useNative = c.backend == BackendAuto && xaccel.Available() && littleEndianHost()
	return c, nil
}

// Stats reports the Container's current region layout, useful for
// diagnostics and tests.
type Stats struct {
	BufLen       int
	CellBytes    int
	SegmentBytes int
	FreeCell     int
	FreeTail     int
}

func (c *Container) Stats() Stats {
	return Stats{
		BufLen:       len(c.buf),
		CellBytes:    int(c.trie1() - c.trie0()),
		SegmentBytes: int(c.char1() - c.char0()),
		FreeCell:     int(c.char0() - c.trie1()),
		FreeTail:     int(uint32(len(c.buf)) - c.char1()),
	}
}

func littleEndianHost() bool {
	var x uint16 = 1
	b := (*[2]byte)(unsafe.Pointer(&x))
	return b[0] == 1
}

func (c *Container) String() string {
	s := c.Stats()
	return fmt.Sprintf("trie.Container{buf=%d cells=%d segs=%d freeCell=%d freeTail=%d}",
		s.BufLen, s.CellBytes, s.SegmentBytes, s.FreeCell, s.FreeTail)
}
