package trie

import "github.com/quietdns/hosttrie/trie/xaccel"

func (c *Container) matchesNative(t TrieRef) int32 {
	return xaccel.Match(c.buf, t.iroot, int32(c.needleLen()))
}

// Matches checks the currently staged needle against the trie rooted at t.
// It returns the number of leading, unconsumed needle bytes on a match (0
// means an exact match) or -1 on a miss. A match requires a label
// boundary: either the whole needle was consumed, or the unconsumed prefix
// ends in a '.'.
func (c *Container) Matches(t TrieRef) int {
	if c.useNative {
		return int(c.matchesNative(t))
	}
	return c.matchesScalar(t)
}

// MatchesHostname is a convenience wrapper combining SetNeedle and Matches.
func (c *Container) MatchesHostname(t TrieRef, hostname string) int {
	c.SetNeedle(hostname)
	return c.Matches(t)
}

func (c *Container) matchesScalar(t TrieRef) int {
	k := c.needleLen()
	if k == 0 {
		return -1
	}
	char0 := c.char0()
	cell := t.iroot
	for {
		if k == 0 {
			return -1
		}
		b := c.buf[k-1]

		cur := cell
		var length uint8
		var off uint32
		found := false
		for {
			segv := c.cellSeg(cur)
			if segv != 0 {
				l, o := unpackSeg(segv)
				if c.buf[char0+o] == b {
					length, off = l, o
					found = true
					break
				}
			}
			down := c.cellDown(cur)
			if down == 0 {
				break
			}
			cur = down
		}
		if !found {
			return -1
		}
		cell = cur

		if k < int(length) {
			return -1
		}
		p := char0 + off
		matched := true
		for i := 1; i < int(length); i++ {
			if c.buf[p+uint32(i)] != c.buf[k-1-i] {
				matched = false
				break
			}
		}
		if !matched {
			return -1
		}
		k -= int(length)

		r := c.cellRight(cell)
		if r == 0 {
			if k == 0 || c.buf[k-1] == '.' {
				return k
			}
			return -1
		}
		if c.cellSeg(r) == 0 {
			if k == 0 || c.buf[k-1] == '.' {
				return k
			}
			cell = c.cellRight(r)
			if cell == 0 {
				return -1
			}
			continue
		}
		cell = r
	}
}
