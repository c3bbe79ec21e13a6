package trie

// SetNeedle stages s as the current needle, truncating silently to the
// 254-byte maximum the needle scratch area holds. An empty
// needle is a valid, if useless, state: Add and Matches both treat it as
// a no-op.
func (c *Container) SetNeedle(s string) {
	if len(s) > maxNeedleLen {
		s = s[:maxNeedleLen]
	}
	n := copy(c.buf[0:needleCap], s)
	c.buf[needleLenOffset] = byte(n)
}

// Add inserts the currently staged needle into the trie rooted at t. It
// returns true if the needle was newly added, false if it was already
// present. An empty needle is a no-op and returns false.
func (c *Container) Add(t TrieRef) (bool, error) {
	k := c.needleLen()
	if k == 0 {
		return false, nil
	}
	if err := c.ensureFreeSpace(); err != nil {
		return false, err
	}

	root := t.iroot
	if c.cellDown(root) == 0 && c.cellRight(root) == 0 && c.cellSeg(root) == 0 {
		seg, err := c.allocSegment(k)
		if err != nil {
			return false, err
		}
		c.setCellSeg(root, seg)
		return true, nil
	}

	cell := root
	for {
		if err := c.ensureFreeSpace(); err != nil {
			return false, err
		}

		segv := c.cellSeg(cell)
		if segv == 0 {
			// Boundary cell: not a match target, follow its continuation.
			cell = c.cellRight(cell)
			continue
		}

		length, off := unpackSeg(segv)
		p := c.char0() + off
		m := 0
		maxM := int(length)
		if k < maxM {
			maxM = k
		}
		for m < maxM && c.buf[p+uint32(m)] == c.buf[k-1-m] {
			m++
		}

		switch {
		case m == 0:
			if down := c.cellDown(cell); down != 0 {
				cell = down
				continue
			}
			seg, err := c.allocSegment(k)
			if err != nil {
				return false, err
			}
			newCell, err := c.allocCell(0, 0, seg)
			if err != nil {
				return false, err
			}
			c.setCellDown(cell, newCell)
			return true, nil

		case m == int(length):
			k -= m
			if k == 0 {
				r := c.cellRight(cell)
				if r == 0 || c.cellSeg(r) == 0 {
					return false, nil
				}
				boundary, err := c.allocCell(0, r, 0)
				if err != nil {
					return false, err
				}
				c.setCellRight(cell, boundary)
				return true, nil
			}
			if r := c.cellRight(cell); r != 0 {
				cell = r
				continue
			}
			seg, err := c.allocSegment(k)
			if err != nil {
				return false, err
			}
			tail, err := c.allocCell(0, 0, seg)
			if err != nil {
				return false, err
			}
			boundary, err := c.allocCell(0, tail, 0)
			if err != nil {
				return false, err
			}
			c.setCellRight(cell, boundary)
			return true, nil

		default: // 0 < m < length: split.
			tailSeg := packSeg(length-uint8(m), off+uint32(m))
			tail, err := c.allocCell(0, c.cellRight(cell), tailSeg)
			if err != nil {
				return false, err
			}
			c.setCellRight(cell, tail)
			c.setCellSeg(cell, packSeg(uint8(m), off))
			k -= m
			if k == 0 {
				boundary, err := c.allocCell(0, tail, 0)
				if err != nil {
					return false, err
				}
				c.setCellRight(cell, boundary)
				return true, nil
			}
			seg, err := c.allocSegment(k)
			if err != nil {
				return false, err
			}
			newCell, err := c.allocCell(0, 0, seg)
			if err != nil {
				return false, err
			}
			c.setCellDown(tail, newCell)
			return true, nil
		}
	}
}

// AddHostname is a convenience wrapper combining SetNeedle and Add.
func (c *Container) AddHostname(t TrieRef, hostname string) (bool, error) {
	c.SetNeedle(hostname)
	return c.Add(t)
}
