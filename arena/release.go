package arena

import "github.com/joshuapare/smmkit/internal/format"

// Release returns the block behind ref to the free list.
//
// ref must come from Alloc on this arena and must not have been released yet.
// Anything else (double free, foreign reference, overwritten header) panics
// with a *CorruptionError.
//
// The block is inserted at its address-ordered position. If it ends where the
// following free block starts the two are merged, and if the preceding free
// block ends where it starts it is folded into that block, so one release can
// join three extents into one.
func (a *Arena) Release(ref Ref) {
	a.check("release")
	blk := a.allocatedBlock("release", ref)

	// find the insertion point: prev < blk < next
	var prevHdr format.BlockHeader
	prev, next := format.NilOffset, a.head()
	for next != format.NilOffset && next < blk.Offset {
		prevHdr = a.freeNode("release", next)
		prev, next = next, prevHdr.Next
	}
	if prev != format.NilOffset && prevHdr.End() > blk.Offset {
		corrupt("release", blk.Offset, "block overlaps free block at 0x%X", prev)
	}
	if next != format.NilOffset && next < blk.End() {
		corrupt("release", blk.Offset, "block overlaps free block at 0x%X", next)
	}

	blk.Tag = format.TagFree
	blk.Next = next
	if next != format.NilOffset && blk.End() == next {
		nextHdr := a.freeNode("release", next)
		blk.Size += nextHdr.Size
		blk.Next = nextHdr.Next
		a.scrub(next)
		a.log.Debug("release: merge forward", "off", blk.Offset, "next", next, "size", blk.Size)
	}

	if prev != format.NilOffset && prevHdr.End() == blk.Offset {
		prevHdr.Size += blk.Size
		prevHdr.Next = blk.Next
		a.writeHeader(prevHdr)
		a.scrub(blk.Offset)
		a.log.Debug("release: merge backward", "off", blk.Offset, "prev", prev, "size", prevHdr.Size)
	} else {
		a.writeHeader(blk)
		a.link(prev, blk.Offset)
	}
	a.afterMutation("release")
}
