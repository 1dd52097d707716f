package arena

import (
	"errors"
	"fmt"
	"io"

	"github.com/joshuapare/smmkit/internal/format"
)

// ErrStopWalk can be returned from a Walk callback to end the walk early
// without an error.
var ErrStopWalk = errors.New("arena: stop walk")

// Payload returns the payload bytes of a live allocation. The slice covers the
// whole block after its header, which may be more than was requested, and its
// capacity ends at the block boundary.
func (a *Arena) Payload(ref Ref) []byte {
	a.check("payload")
	blk := a.allocatedBlock("payload", ref)
	return a.region[int(ref):blk.End():blk.End()]
}

// BlockSize returns the total size, header included, of a live allocation.
func (a *Arena) BlockSize(ref Ref) int {
	a.check("blocksize")
	return a.allocatedBlock("blocksize", ref).Size
}

// FreeBlockCount walks the free list and returns its length. Every visited node
// must be tagged free.
func (a *Arena) FreeBlockCount() int {
	a.check("count")
	n := 0
	for off := a.head(); off != format.NilOffset; {
		off = a.freeNode("count", off).Next
		n++
	}
	return n
}

// FreeBlocks returns the free list in list order.
func (a *Arena) FreeBlocks() []Block {
	a.check("freeblocks")
	var out []Block
	for off := a.head(); off != format.NilOffset; {
		h := a.freeNode("freeblocks", off)
		out = append(out, a.block(h))
		off = h.Next
	}
	return out
}

// Dump writes one line per free block to w.
func (a *Arena) Dump(w io.Writer) error {
	a.check("dump")
	if _, err := fmt.Fprintf(w, "arena: align_mask=0x%X header=%d usable=%d\n", a.mask, a.hdr, a.Usable()); err != nil {
		return err
	}
	for _, b := range a.FreeBlocks() {
		if _, err := fmt.Fprintf(w, "freeblock(0x%X): size=%d next=0x%X\n", b.Offset, b.Size, b.Next); err != nil {
			return err
		}
	}
	return nil
}

// Walk visits every block in address order, free and allocated alike. A header
// with neither tag panics. The walk stops at the first error returned by fn;
// ErrStopWalk stops it without an error.
func (a *Arena) Walk(fn func(Block) error) error {
	a.check("walk")
	for off := a.desc; off < len(a.region); {
		h := a.readHeader("walk", off)
		if h.Tag != format.TagFree && h.Tag != format.TagAllocated {
			corrupt("walk", off, "block tagged %s", format.TagName(h.Tag))
		}
		if err := fn(a.block(h)); err != nil {
			if errors.Is(err, ErrStopWalk) {
				return nil
			}
			return err
		}
		off = h.End()
	}
	return nil
}

// Stats computes usage totals with a full walk of the region.
func (a *Arena) Stats() Stats {
	st := Stats{
		RegionSize: len(a.region),
		Usable:     a.Usable(),
		AlignMask:  a.mask,
		HeaderSize: a.hdr,
	}
	_ = a.Walk(func(b Block) error {
		if b.Tag == TagFree {
			st.FreeBlocks++
			st.FreeBytes += b.Size
			st.LargestFree = max(st.LargestFree, b.Size)
		} else {
			st.AllocatedBlocks++
			st.AllocatedBytes += b.Size
		}
		return nil
	})
	return st
}

func (a *Arena) block(h format.BlockHeader) Block {
	next := h.Next
	if h.Tag != format.TagFree {
		next = format.NilOffset
	}
	return Block{
		Offset: h.Offset,
		Size:   h.Size,
		Tag:    Tag(h.Tag),
		Next:   next,
		Ref:    Ref(h.Offset + a.hdr),
	}
}
