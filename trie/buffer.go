// Package trie implements the arena-backed radix trie described for
// hostname suffix matching: a single flat byte buffer holding a needle
// scratch area, a small header, a region of 12-byte cells, and a segment
// pool, addressed entirely through self-relative offsets so the buffer can
// be serialized and restored without any pointer fix-up.
package trie

import "encoding/binary"

const (
	// needleCap is the number of bytes reserved for the needle scratch
	// area, buf[0:needleCap).
	needleCap = 255
	// needleLenOffset is the byte holding the current needle's length.
	needleLenOffset = 255

	// headerOffset is the first byte of the four-word header.
	headerOffset = 256
	trie0Word    = headerOffset      // fixed start of the cell region
	trie1Word    = headerOffset + 4  // first free byte in the cell region
	char0Word    = headerOffset + 8  // start of the segment pool
	char1Word    = headerOffset + 12 // first free byte in the segment pool

	// cellRegionStart is the fixed value stored in TRIE0: cells never
	// start anywhere else.
	cellRegionStart = 272
	cellSize        = 12

	// initialCharStart and initialBufLen size a freshly created container
	// before anything has been inserted.
	initialCharStart = 65536
	initialBufLen    = 131072

	// minCellHeadroom and minTailReserve are invariant 7's free-space
	// margins, maintained before every insertion.
	minCellHeadroom = 24
	minTailReserve  = 256

	growPage = 65536

	// maxNeedleLen is the largest hostname length the needle area can
	// hold; longer input is truncated.
	maxNeedleLen = 254
)

func readU32(buf []byte, byteOff uint32) uint32 {
	return binary.LittleEndian.Uint32(buf[byteOff : byteOff+4])
}

func writeU32(buf []byte, byteOff uint32, v uint32) {
	binary.LittleEndian.PutUint32(buf[byteOff:byteOff+4], v)
}

func (c *Container) trie0() uint32 { return readU32(c.buf, trie0Word) }
func (c *Container) trie1() uint32 { return readU32(c.buf, trie1Word) }
func (c *Container) char0() uint32 { return readU32(c.buf, char0Word) }
func (c *Container) char1() uint32 { return readU32(c.buf, char1Word) }

func (c *Container) setTrie1(v uint32) { writeU32(c.buf, trie1Word, v) }
func (c *Container) setChar0(v uint32) { writeU32(c.buf, char0Word, v) }
func (c *Container) setChar1(v uint32) { writeU32(c.buf, char1Word, v) }

// needleLen returns the length of the currently staged needle.
func (c *Container) needleLen() int {
	return int(c.buf[needleLenOffset])
}

func roundUp(x, multiple uint32) uint32 {
	if x%multiple == 0 {
		return x
	}
	return (x/multiple + 1) * multiple
}

// cell field accessors: a cell is three little-endian u32 words,
// down/right/seg, starting at word index w (byte offset w*4).

func (c *Container) cellDown(w uint32) uint32  { return readU32(c.buf, w*4) }
func (c *Container) cellRight(w uint32) uint32 { return readU32(c.buf, w*4+4) }
func (c *Container) cellSeg(w uint32) uint32   { return readU32(c.buf, w*4+8) }

func (c *Container) setCellDown(w, v uint32)  { writeU32(c.buf, w*4, v) }
func (c *Container) setCellRight(w, v uint32) { writeU32(c.buf, w*4+4, v) }
func (c *Container) setCellSeg(w, v uint32)   { writeU32(c.buf, w*4+8, v) }

// packSeg/unpackSeg convert between a segment descriptor and its length/
// pool-relative offset. seg==0 always means "boundary cell, no segment".
func packSeg(length uint8, off uint32) uint32 {
	return uint32(length)<<24 | (off & 0x00FFFFFF)
}

func unpackSeg(seg uint32) (length uint8, off uint32) {
	return uint8(seg >> 24), seg & 0x00FFFFFF
}
