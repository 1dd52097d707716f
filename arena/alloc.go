package arena

import "github.com/joshuapare/smmkit/internal/format"

// Alloc reserves a block with at least size payload bytes and returns the
// reference of its payload. The payload starts on an alignment boundary.
//
// The free list is searched first-fit in ascending address order. Returns
// (NilRef, false) when no free block is large enough; that is an ordinary
// outcome and the caller decides whether it is fatal. Negative sizes never
// succeed. A zero size still consumes one aligned header.
func (a *Arena) Alloc(size int) (Ref, bool) {
	a.check("alloc")
	if size < 0 || size > len(a.region) {
		return NilRef, false
	}
	need := format.AlignUp(size, a.mask) + a.hdr

	prev := format.NilOffset
	for off := a.head(); off != format.NilOffset; {
		b := a.freeNode("alloc", off)
		if b.Size < need {
			prev, off = off, b.Next
			continue
		}

		if rem := b.Size - need; rem < a.hdr {
			// a remainder this small could never hold a header, hand out the whole block
			a.link(prev, b.Next)
			a.log.Debug("alloc: consume", "off", off, "size", b.Size, "need", need)
		} else {
			tail := format.BlockHeader{
				Offset: off + need,
				Tag:    format.TagFree,
				Size:   rem,
				Next:   b.Next,
			}
			a.writeHeader(tail)
			a.link(prev, tail.Offset)
			b.Size = need
			a.log.Debug("alloc: split", "off", off, "need", need, "tail", tail.Offset, "remainder", rem)
		}

		b.Tag = format.TagAllocated
		b.Next = format.NilOffset
		a.writeHeader(b)
		a.afterMutation("alloc")
		return Ref(off + a.hdr), true
	}

	a.log.Debug("alloc: no fit", "size", size, "need", need)
	return NilRef, false
}

// Reallocate is not supported. Growing a block in place would need the next
// physical block to be free and large enough, which the free list does not
// track, and moving it would need the payload length, which the arena does not
// know. Callers allocate a new block, copy, and release the old one.
//
// Reallocate always panics with ErrReallocUnsupported.
func (a *Arena) Reallocate(ref Ref, size int) Ref {
	panic(ErrReallocUnsupported)
}
