package arena

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/joshuapare/smmkit/internal/buf"
	"github.com/joshuapare/smmkit/internal/format"
	"github.com/joshuapare/smmkit/internal/logger"
)

// Arena is a handle on an initialized region. All allocator state lives in the
// region itself; the handle only caches values derived from the descriptor.
type Arena struct {
	region []byte
	mask   int
	desc   int // aligned descriptor size, offset of the first block
	hdr    int // aligned block header size
	dt     DirtyTracker
	log    *slog.Logger
}

// Init writes an arena descriptor at the start of region and turns the rest of
// it into a single free block.
//
// Parameters:
//   - region: caller-owned memory, left untouched outside its bounds
//   - alignMask: 2^k-1, e.g. 0xF aligns headers and payloads to 16 bytes
//   - opts: optional tracker and logger (nil for defaults)
func Init(region []byte, alignMask int, opts *Options) (*Arena, error) {
	if !format.ValidMask(alignMask) {
		return nil, fmt.Errorf("%w: 0x%X", ErrBadAlignMask, alignMask)
	}
	if !regionAligned(region, alignMask) {
		return nil, ErrMisalignedRegion
	}
	if need := format.MinRegionSize(alignMask); len(region) < need {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrRegionTooSmall, len(region), need)
	}

	a := newArena(region, alignMask, opts)
	first := format.BlockHeader{
		Offset: a.desc,
		Tag:    format.TagFree,
		Size:   len(region) - a.desc,
		Next:   format.NilOffset,
	}
	format.PutDescriptor(region, format.Descriptor{
		Magic:      format.DescriptorMagic,
		AlignMask:  alignMask,
		Head:       first.Offset,
		RegionSize: len(region),
	})
	a.markDirty(0, format.DescriptorSize)
	a.writeHeader(first)

	a.log.Debug("arena: init",
		"size", len(region), "mask", alignMask, "descriptor", a.desc, "header", a.hdr, "usable", first.Size)
	a.afterMutation("init")
	return a, nil
}

// Attach opens a region that already carries an arena descriptor, for example
// a region file mapped again after a restart. Unlike the other operations it
// reports a missing or inconsistent descriptor as an error, since the caller is
// asking whether the region is an arena at all.
func Attach(region []byte, opts *Options) (*Arena, error) {
	d, err := format.ParseDescriptor(region)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegionTooSmall, err)
	}
	if d.Magic != format.DescriptorMagic {
		return nil, fmt.Errorf("%w: magic 0x%08X", ErrNotArena, d.Magic)
	}
	if !format.ValidMask(d.AlignMask) {
		return nil, fmt.Errorf("%w: 0x%X", ErrBadAlignMask, d.AlignMask)
	}
	if !regionAligned(region, d.AlignMask) {
		return nil, ErrMisalignedRegion
	}
	if need := format.MinRegionSize(d.AlignMask); len(region) < need {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrRegionTooSmall, len(region), need)
	}
	if d.RegionSize != len(region) {
		return nil, fmt.Errorf("%w: descriptor says %d, region is %d", ErrSizeMismatch, d.RegionSize, len(region))
	}
	return newArena(region, d.AlignMask, opts), nil
}

func newArena(region []byte, mask int, opts *Options) *Arena {
	a := &Arena{
		region: region,
		mask:   mask,
		desc:   format.AlignedDescriptorSize(mask),
		hdr:    format.AlignedHeaderSize(mask),
		log:    logger.L,
	}
	if opts != nil {
		a.dt = opts.Tracker
		if opts.Logger != nil {
			a.log = opts.Logger
		}
	}
	return a
}

// AlignedBuffer allocates a Go byte slice of exactly size bytes whose first
// byte satisfies mask. It is a convenience for callers that have no region of
// their own; the arena itself never calls it.
func AlignedBuffer(size, mask int) []byte {
	if !format.ValidMask(mask) || size < 0 {
		panic(fmt.Sprintf("arena: AlignedBuffer(%d, 0x%X): invalid arguments", size, mask))
	}
	raw := make([]byte, size+mask)
	pad := 0
	if mis := int(uintptr(unsafe.Pointer(unsafe.SliceData(raw))) & uintptr(mask)); mis != 0 {
		pad = mask + 1 - mis
	}
	return raw[pad : pad+size : pad+size]
}

func regionAligned(region []byte, mask int) bool {
	return uintptr(unsafe.Pointer(unsafe.SliceData(region)))&uintptr(mask) == 0
}

// AlignMask returns the mask the arena was initialized with.
func (a *Arena) AlignMask() int { return a.mask }

// HeaderSize returns the aligned block header size, the per-block overhead.
func (a *Arena) HeaderSize() int { return a.hdr }

// Usable returns the number of bytes managed as blocks.
func (a *Arena) Usable() int { return len(a.region) - a.desc }

//---- descriptor and header access

// check asserts that the descriptor is still intact. Every public operation
// starts here.
func (a *Arena) check(op string) {
	if a == nil || len(a.region) < format.DescriptorSize {
		corrupt(op, -1, "arena not initialized")
	}
	if magic := format.ReadU32(a.region, format.DescriptorMagicOffset); magic != format.DescriptorMagic {
		corrupt(op, 0, "descriptor magic 0x%08X, want 0x%08X", magic, format.DescriptorMagic)
	}
}

func (a *Arena) head() int {
	return format.ReadOffset(a.region, format.DescriptorHeadOffset)
}

func (a *Arena) setHead(off int) {
	format.PutOffset(a.region, format.DescriptorHeadOffset, off)
	a.markDirty(format.DescriptorHeadOffset, 8)
}

// readHeader decodes the header at off after validating that off and the
// recorded size describe a block inside the usable area.
func (a *Arena) readHeader(op string, off int) format.BlockHeader {
	if off < a.desc || !format.Aligned(off, a.mask) {
		corrupt(op, off, "block offset outside usable area or misaligned")
	}
	h, err := format.ParseBlockHeader(a.region, off)
	if err != nil {
		corrupt(op, off, "%v", err)
	}
	if h.Size < a.hdr {
		corrupt(op, off, "block size %d below header size %d", h.Size, a.hdr)
	}
	if _, err := buf.CheckRange(len(a.region), off, h.Size); err != nil {
		corrupt(op, off, "block size %d: %v", h.Size, err)
	}
	return h
}

// freeNode reads a free-list node and asserts its tag.
func (a *Arena) freeNode(op string, off int) format.BlockHeader {
	h := a.readHeader(op, off)
	if h.Tag != format.TagFree {
		corrupt(op, off, "free list node tagged %s", format.TagName(h.Tag))
	}
	if h.Next != format.NilOffset && h.Next <= off {
		corrupt(op, off, "free list not ascending: next 0x%X", h.Next)
	}
	return h
}

// allocatedBlock resolves ref to its header and asserts it is allocated.
func (a *Arena) allocatedBlock(op string, ref Ref) format.BlockHeader {
	off := int(ref) - a.hdr
	h := a.readHeader(op, off)
	if h.Tag != format.TagAllocated {
		corrupt(op, off, "block tagged %s, want allocated", format.TagName(h.Tag))
	}
	return h
}

func (a *Arena) writeHeader(h format.BlockHeader) {
	format.PutBlockHeader(a.region, h)
	a.markDirty(h.Offset, format.BlockHeaderSize)
}

// link points prev's next field (or the list head when prev is nil) at next.
func (a *Arena) link(prev, next int) {
	if prev == format.NilOffset {
		a.setHead(next)
		return
	}
	format.PutOffset(a.region, prev+format.BlockNextOffset, next)
	a.markDirty(prev+format.BlockNextOffset, 8)
}

// scrub clears the tag of a header that was absorbed by a merge so a stale
// reference to it can never pass a tag check again.
func (a *Arena) scrub(off int) {
	format.PutU32(a.region, off+format.BlockTagOffset, 0)
	a.markDirty(off+format.BlockTagOffset, 4)
}

func (a *Arena) markDirty(off, length int) {
	if a.dt != nil {
		a.dt.Add(off, length)
	}
}
