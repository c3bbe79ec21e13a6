package trie

// allocCell appends a new 12-byte cell at TRIE1 and returns its word index
// (byte offset / 4). It grows the buffer first if the cell region doesn't
// have enough headroom before the segment pool.
func (c *Container) allocCell(down, right, seg uint32) (uint32, error) {
	if c.char0()-c.trie1() < cellSize {
		if err := c.growBuf(); err != nil {
			return 0, err
		}
	}
	off := c.trie1()
	writeU32(c.buf, off, down)
	writeU32(c.buf, off+4, right)
	writeU32(c.buf, off+8, seg)
	c.setTrie1(off + cellSize)
	return off / 4, nil
}

// allocSegment copies the first length bytes of the staged needle into the
// segment pool, in reverse order, and returns a packed descriptor. A
// length of 0 always yields the reserved "no segment" descriptor 0.
func (c *Container) allocSegment(length int) (uint32, error) {
	if length == 0 {
		return 0, nil
	}
	segment := c.buf[0:length]
	if c.dedup != nil {
		if desc, ok := c.dedup.Lookup(segment); ok {
			return desc, nil
		}
	}
	if uint32(len(c.buf))-c.char1() < uint32(length)+minTailReserve {
		if err := c.growBuf(); err != nil {
			return 0, err
		}
	}
	p := c.char1()
	off := p - c.char0()
	for i := 0; i < length; i++ {
		c.buf[p+uint32(i)] = segment[length-1-i]
	}
	c.setChar1(p + uint32(length))
	desc := packSeg(uint8(length), off)
	if c.dedup != nil {
		c.dedup.Record(segment, desc)
	}
	return desc, nil
}

// ensureFreeSpace enforces invariant 7's two free-space margins before an
// insertion begins: at least room for two more cells, and at least the
// tail reserve beyond the segment pool.
func (c *Container) ensureFreeSpace() error {
	for c.char0()-c.trie1() < minCellHeadroom {
		if err := c.growBuf(); err != nil {
			return err
		}
	}
	for uint32(len(c.buf))-c.char1() < minTailReserve {
		if err := c.growBuf(); err != nil {
			return err
		}
	}
	return nil
}
