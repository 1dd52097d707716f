// Package format describes the on-region layout shared by the arena and the
// tools that inspect a region without an open arena handle. Everything here is
// plain offsets and little-endian integers so a region can be mapped from a
// file in one process and attached in another.
package format

const (
	// DescriptorMagic marks an initialized arena at offset 0 of a region.
	// Layout (little-endian):
	//   0x00  'A' 'R' 'N' 'A'
	DescriptorMagic uint32 = 0x414E5241

	// DescriptorSize is the unaligned size of the arena descriptor.
	DescriptorSize = 0x18

	// DescriptorMagicOffset holds DescriptorMagic.
	DescriptorMagicOffset = 0x00

	// DescriptorMaskOffset holds the alignment mask (uint32).
	DescriptorMaskOffset = 0x04

	// DescriptorHeadOffset holds the offset of the first free block (uint64).
	// Zero means the free list is empty; offset 0 is the descriptor itself so
	// it can never name a block.
	DescriptorHeadOffset = 0x08

	// DescriptorRegionSizeOffset holds the total region size in bytes (uint64).
	DescriptorRegionSizeOffset = 0x10
)

const (
	// BlockHeaderSize is the unaligned size of a block header.
	BlockHeaderSize = 0x18

	// BlockTagOffset holds the block tag (uint32).
	BlockTagOffset = 0x00

	// BlockReservedOffset is kept zero.
	BlockReservedOffset = 0x04

	// BlockSizeOffset holds the block size including its header (uint64).
	BlockSizeOffset = 0x08

	// BlockNextOffset holds the next free block offset (uint64), 0 at the tail.
	// Only meaningful while the block is free.
	BlockNextOffset = 0x10
)

const (
	// TagFree marks a block on the free list ("FREE").
	TagFree uint32 = 0x45455246

	// TagAllocated marks a block owned by a caller ("USED").
	TagAllocated uint32 = 0x44455355

	// NilOffset terminates the free list.
	NilOffset = 0

	// MaxAlignMask is the largest mask the descriptor can store.
	MaxAlignMask = 1<<31 - 1
)
