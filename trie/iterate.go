package trie

import "iter"

// Iterate returns a sequence over every hostname stored in the trie rooted
// at t, in an unspecified order. It performs a depth-first walk of the
// down-chain (sibling branches) and right-chain (chunk continuations),
// reconstructing each hostname from the reversed segment chunks it passes
// through.
func (c *Container) Iterate(t TrieRef) iter.Seq[string] {
	return func(yield func(string) bool) {
		root := t.iroot
		if c.cellSeg(root) == 0 && c.cellDown(root) == 0 && c.cellRight(root) == 0 {
			return
		}
		c.dfs(root, nil, yield)
	}
}

// dfs walks one chunk-bearing cell and its down/right chains. prefix holds
// the forward-ordered chunks accumulated via the right-chain ancestors of
// cell; it does not include cell's own chunk. Returns false once yield has
// asked the walk to stop.
func (c *Container) dfs(cell uint32, prefix [][]byte, yield func(string) bool) bool {
	for {
		length, off := unpackSeg(c.cellSeg(cell))
		chunk := c.forwardChunk(off, length)

		if down := c.cellDown(cell); down != 0 {
			if !c.dfs(down, prefix, yield) {
				return false
			}
		}

		next := append(append([][]byte{}, prefix...), chunk)

		r := c.cellRight(cell)
		if r == 0 {
			return yield(joinChunks(next))
		}
		if c.cellSeg(r) == 0 {
			if !yield(joinChunks(next)) {
				return false
			}
			nextRight := c.cellRight(r)
			if nextRight == 0 {
				return true
			}
			cell = nextRight
			prefix = next
			continue
		}
		cell = r
		prefix = next
	}
}

// forwardChunk reads a segment's bytes back into forward (non-reversed)
// order. The returned slice is a fresh copy; callers may retain it.
func (c *Container) forwardChunk(off uint32, length uint8) []byte {
	p := c.char0() + off
	out := make([]byte, length)
	for i := 0; i < int(length); i++ {
		out[i] = c.buf[p+uint32(length)-1-uint32(i)]
	}
	return out
}

// joinChunks concatenates chunks visited root-first into the original
// hostname: the chunk nearest the root holds the rightmost (suffix)
// characters, so chunks are emitted in reverse visitation order.
func joinChunks(chunks [][]byte) string {
	total := 0
	for _, ch := range chunks {
		total += len(ch)
	}
	out := make([]byte, total)
	pos := 0
	for i := len(chunks) - 1; i >= 0; i-- {
		pos += copy(out[pos:], chunks[i])
	}
	return string(out)
}
