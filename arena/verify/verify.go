// Package verify checks arena invariants directly on region bytes, without an
// arena handle. Tests use it after every step of a sequence, smmctl uses it for
// the verify command, and the smmdebug build runs it after every mutation.
package verify

import (
	"fmt"

	"github.com/joshuapare/smmkit/internal/buf"
	"github.com/joshuapare/smmkit/internal/format"
)

// ValidationError describes the first invariant violation found.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates the descriptor, the block partition and the free
// list. Returns the first error encountered, or nil if all checks pass.
func AllInvariants(data []byte) error {
	d, err := Descriptor(data)
	if err != nil {
		return err
	}
	free, err := Partition(data, d)
	if err != nil {
		return err
	}
	return FreeList(data, d, free)
}

// Descriptor validates the arena descriptor and returns it decoded.
func Descriptor(data []byte) (format.Descriptor, error) {
	d, err := format.ParseDescriptor(data)
	if err != nil {
		return d, &ValidationError{
			Type:    "Descriptor",
			Message: fmt.Sprintf("region too small: %d bytes", len(data)),
			Offset:  -1,
		}
	}
	if d.Magic != format.DescriptorMagic {
		return d, &ValidationError{
			Type:    "Descriptor",
			Message: fmt.Sprintf("invalid magic: got 0x%08X, expected 0x%08X", d.Magic, format.DescriptorMagic),
			Offset:  format.DescriptorMagicOffset,
		}
	}
	if !format.ValidMask(d.AlignMask) {
		return d, &ValidationError{
			Type:    "Descriptor",
			Message: fmt.Sprintf("alignment mask 0x%X is not 2^k-1", d.AlignMask),
			Offset:  format.DescriptorMaskOffset,
		}
	}
	if d.RegionSize != len(data) {
		return d, &ValidationError{
			Type:    "Descriptor",
			Message: fmt.Sprintf("region size mismatch: recorded=%d, actual=%d", d.RegionSize, len(data)),
			Offset:  format.DescriptorRegionSizeOffset,
			Details: map[string]interface{}{
				"recorded": d.RegionSize,
				"actual":   len(data),
			},
		}
	}
	if len(data) < format.MinRegionSize(d.AlignMask) {
		return d, &ValidationError{
			Type:    "Descriptor",
			Message: fmt.Sprintf("region of %d bytes cannot hold a block", len(data)),
			Offset:  -1,
		}
	}
	return d, nil
}

// Partition walks every block in address order and checks that blocks tile
// the usable area exactly, that every header is aligned and tagged, and that
// no two free blocks touch. It returns the offsets of the free blocks seen.
func Partition(data []byte, d format.Descriptor) ([]int, error) {
	desc := format.AlignedDescriptorSize(d.AlignMask)
	hdr := format.AlignedHeaderSize(d.AlignMask)

	var free []int
	total := 0
	prevFree := false
	pos := desc
	for pos < len(data) {
		if !format.Aligned(pos, d.AlignMask) {
			return nil, &ValidationError{
				Type:    "Partition",
				Message: fmt.Sprintf("block header not aligned to 0x%X", d.AlignMask+1),
				Offset:  pos,
			}
		}
		h, err := format.ParseBlockHeader(data, pos)
		if err != nil {
			return nil, &ValidationError{Type: "Partition", Message: err.Error(), Offset: pos}
		}
		if h.Tag != format.TagFree && h.Tag != format.TagAllocated {
			return nil, &ValidationError{
				Type:    "Partition",
				Message: fmt.Sprintf("block tagged %s", format.TagName(h.Tag)),
				Offset:  pos,
			}
		}
		if h.Size < hdr {
			return nil, &ValidationError{
				Type:    "Partition",
				Message: fmt.Sprintf("block size %d below header size %d", h.Size, hdr),
				Offset:  pos,
			}
		}
		if _, err := buf.CheckRange(len(data), pos, h.Size); err != nil {
			return nil, &ValidationError{
				Type:    "Partition",
				Message: fmt.Sprintf("block extends beyond region: %v", err),
				Offset:  pos,
			}
		}
		if h.Free() {
			if prevFree {
				return nil, &ValidationError{
					Type:    "Partition",
					Message: "free block adjacent to another free block (missed coalesce)",
					Offset:  pos,
				}
			}
			free = append(free, pos)
		}
		prevFree = h.Free()
		total += h.Size
		pos = h.End()
	}

	if usable := len(data) - desc; total != usable {
		return nil, &ValidationError{
			Type:    "Partition",
			Message: fmt.Sprintf("block sizes sum to %d, usable area is %d", total, usable),
			Offset:  -1,
			Details: map[string]interface{}{
				"total":  total,
				"usable": usable,
			},
		}
	}
	return free, nil
}

// FreeList walks the free list from the descriptor head and checks that it is
// strictly ascending, that no two neighbours are address-adjacent, and that it
// names exactly the free blocks found by Partition.
func FreeList(data []byte, d format.Descriptor, free []int) error {
	i := 0
	prevEnd := -1
	for off := d.Head; off != format.NilOffset; {
		if i >= len(free) {
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("free list longer than the %d free blocks in the region", len(free)),
				Offset:  off,
			}
		}
		if off != free[i] {
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("free list entry %d is 0x%X, expected 0x%X", i, off, free[i]),
				Offset:  off,
			}
		}
		// free[i] came from Partition, so the header parses and is tagged free
		h, _ := format.ParseBlockHeader(data, off)
		if off == prevEnd {
			return &ValidationError{
				Type:    "FreeList",
				Message: "free list neighbours are address-adjacent",
				Offset:  off,
			}
		}
		if h.Next != format.NilOffset && h.Next <= off {
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("free list not ascending: next=0x%X", h.Next),
				Offset:  off,
			}
		}
		prevEnd = h.End()
		off = h.Next
		i++
	}
	if i != len(free) {
		return &ValidationError{
			Type:    "FreeList",
			Message: fmt.Sprintf("free list has %d entries, region has %d free blocks", i, len(free)),
			Offset:  -1,
		}
	}
	return nil
}
