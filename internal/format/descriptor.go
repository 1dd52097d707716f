package format

import "fmt"

// Descriptor is the decoded arena descriptor at offset 0 of a region.
type Descriptor struct {
	Magic      uint32
	AlignMask  int
	Head       int // offset of the first free block, NilOffset when empty
	RegionSize int
}

// ParseDescriptor decodes the descriptor at the start of b. Only the length is
// checked here; callers decide what a bad magic or mask means.
func ParseDescriptor(b []byte) (Descriptor, error) {
	if len(b) < DescriptorSize {
		return Descriptor{}, fmt.Errorf("descriptor: %w", ErrTruncated)
	}
	return Descriptor{
		Magic:      ReadU32(b, DescriptorMagicOffset),
		AlignMask:  int(ReadU32(b, DescriptorMaskOffset)),
		Head:       ReadOffset(b, DescriptorHeadOffset),
		RegionSize: ReadOffset(b, DescriptorRegionSizeOffset),
	}, nil
}

// PutDescriptor encodes d at the start of b.
func PutDescriptor(b []byte, d Descriptor) {
	PutU32(b, DescriptorMagicOffset, d.Magic)
	PutU32(b, DescriptorMaskOffset, uint32(d.AlignMask))
	PutOffset(b, DescriptorHeadOffset, d.Head)
	PutOffset(b, DescriptorRegionSizeOffset, d.RegionSize)
}

// BlockHeader is a decoded block header.
//
// Block header layout (little-endian):
//
//	Offset  Size  Description
//	0x00    4     Tag. TagFree or TagAllocated.
//	0x04    4     Reserved, zero.
//	0x08    8     Block size including this header.
//	0x10    8     Next free block offset. Meaningless while allocated.
type BlockHeader struct {
	Offset int
	Tag    uint32
	Size   int
	Next   int
}

// Free reports whether the header carries TagFree.
func (h BlockHeader) Free() bool { return h.Tag == TagFree }

// End is the offset just past the block.
func (h BlockHeader) End() int { return h.Offset + h.Size }

// ParseBlockHeader decodes the header at off. It fails when the header does
// not fit in b; the tag and size are returned as stored.
func ParseBlockHeader(b []byte, off int) (BlockHeader, error) {
	if off < 0 || off > len(b)-BlockHeaderSize {
		return BlockHeader{}, fmt.Errorf("block header at %d: %w", off, ErrTruncated)
	}
	return BlockHeader{
		Offset: off,
		Tag:    ReadU32(b, off+BlockTagOffset),
		Size:   ReadOffset(b, off+BlockSizeOffset),
		Next:   ReadOffset(b, off+BlockNextOffset),
	}, nil
}

// PutBlockHeader encodes h at h.Offset.
func PutBlockHeader(b []byte, h BlockHeader) {
	PutU32(b, h.Offset+BlockTagOffset, h.Tag)
	PutU32(b, h.Offset+BlockReservedOffset, 0)
	PutOffset(b, h.Offset+BlockSizeOffset, h.Size)
	PutOffset(b, h.Offset+BlockNextOffset, h.Next)
}

// TagName renders a raw tag for messages.
func TagName(tag uint32) string {
	switch tag {
	case TagFree:
		return "free"
	case TagAllocated:
		return "allocated"
	default:
		return fmt.Sprintf("invalid(0x%08X)", tag)
	}
}
