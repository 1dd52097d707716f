package arena

import (
	"log/slog"

	"github.com/joshuapare/smmkit/internal/format"
)

// Ref is the offset of a payload from the start of the region. The zero Ref is
// never a valid payload since offset 0 holds the arena descriptor.
type Ref int

// NilRef is returned by Alloc when nothing was allocated.
const NilRef Ref = 0

// Tag discriminates free and allocated blocks.
type Tag uint32

const (
	TagFree      Tag = Tag(format.TagFree)
	TagAllocated Tag = Tag(format.TagAllocated)
)

func (t Tag) String() string {
	return format.TagName(uint32(t))
}

// Block describes one block as seen by the introspection helpers.
type Block struct {
	Offset int // region offset of the header
	Size   int // total size including the header
	Tag    Tag
	Next   int // next free block offset, only meaningful when Tag == TagFree
	Ref    Ref // payload reference
}

// End is the offset just past the block.
func (b Block) End() int { return b.Offset + b.Size }

// Stats summarizes the state of an arena.
type Stats struct {
	RegionSize      int // len(region)
	Usable          int // RegionSize minus the aligned descriptor
	AlignMask       int
	HeaderSize      int // aligned block header size
	FreeBytes       int
	AllocatedBytes  int
	FreeBlocks      int
	AllocatedBlocks int
	LargestFree     int // size of the largest free block, header included
}

// DirtyTracker is notified of every byte range the arena writes inside the
// region. region/dirty.Tracker satisfies it.
type DirtyTracker interface {
	Add(off, length int)
}

// Options configures Init and Attach. A nil *Options selects the defaults.
type Options struct {
	// Tracker receives the ranges of every descriptor and header write. Optional.
	Tracker DirtyTracker

	// Logger receives debug records for split, consume and merge decisions.
	// Default: logger.L
	Logger *slog.Logger
}
