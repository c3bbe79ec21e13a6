package trie

import "github.com/quietdns/hosttrie/trieerr"

// growBuf relocates the segment pool to make room, rounding up to a 64KiB
// boundary the way a production allocator would to amortize the cost of
// repeated small insertions. It never shrinks anything; it only moves the
// segment pool further out and extends the buffer's tail reserve.
func (c *Container) growBuf() error {
	trie1 := c.trie1()
	oldChar0, oldChar1 := c.char0(), c.char1()

	newChar0 := roundUp(trie1+minCellHeadroom, growPage)
	if newChar0 < oldChar0 {
		newChar0 = oldChar0
	}
	newChar1 := newChar0 + (oldChar1 - oldChar0)
	newLen := roundUp(newChar1+minTailReserve, growPage)
	if newLen < uint32(len(c.buf)) {
		newLen = uint32(len(c.buf))
	}

	newBuf, err := c.allocate(int(newLen))
	if err != nil {
		return err
	}
	copy(newBuf[0:trie1], c.buf[0:trie1])
	copy(newBuf[newChar0:newChar1], c.buf[oldChar0:oldChar1])

	c.buf = newBuf
	c.setChar0(newChar0)
	c.setChar1(newChar1)
	return nil
}

// shrinkBuf compacts the buffer to the minimum size that keeps invariant
// 7's tail reserve, aligning regions to 4 bytes instead of growBuf's 64KiB
// pages. It leaves no cell headroom between the cell region and the
// segment pool; the next insertion's ensureFreeSpace grows it back. It backs Optimize and is only used when the backing buffer isn't
// shared with a native accelerator that expects page-aligned growth.
func (c *Container) shrinkBuf() {
	trie1 := c.trie1()
	oldChar0, oldChar1 := c.char0(), c.char1()

	newChar0 := roundUp(trie1, 4)
	if newChar0 < trie1 {
		newChar0 = trie1
	}
	newChar1 := newChar0 + (oldChar1 - oldChar0)
	newLen := roundUp(newChar1+minTailReserve, 4)

	newBuf, err := c.allocate(int(newLen))
	if err != nil {
		// Optimize is best-effort; leave the buffer as-is on failure.
		return
	}
	copy(newBuf[0:trie1], c.buf[0:trie1])
	copy(newBuf[newChar0:newChar1], c.buf[oldChar0:oldChar1])

	c.buf = newBuf
	c.setChar0(newChar0)
	c.setChar1(newChar1)
}

// allocate is the seam through which every buffer resize happens, isolated
// so a native accelerator's page-aligned allocator could be swapped in by a
// build that links one. The runtime allocator doesn't hand back failure, it
// panics; the error return exists for that future seam and for symmetry
// with the rest of the package's explicit error handling.
func (c *Container) allocate(size int) ([]byte, error) {
	if size < 0 {
		return nil, trieerr.New(trieerr.BufferExhausted, "negative allocation size %d", size)
	}
	return make([]byte, size), nil
}

// Optimize compacts the Container's buffer so the gap between the cell
// region and the segment pool, and the gap after the segment pool, are
// both minimized (4-byte aligned, with the mandatory tail reserve). It
// discards any construction-time segment dedup assist, since deduplication
// is never required for correctness.
func (c *Container) Optimize() Stats {
	c.shrinkBuf()
	c.dedup = nil
	return c.Stats()
}
