// Package arena is a first-fit placement allocator over a single caller-owned
// byte region.
//
// # Overview
//
// The caller hands Init a contiguous []byte and an alignment mask. The arena
// writes a small descriptor at the start of the region and carves the rest
// into blocks on demand. It never asks the Go runtime or the OS for memory and
// never reads or writes outside the region it was given.
//
//	region := arena.AlignedBuffer(4096, 0xF)
//	a, err := arena.Init(region, 0xF, nil)
//	if err != nil {
//	    return err
//	}
//
//	ref, ok := a.Alloc(100)
//	if !ok {
//	    // no free block large enough
//	}
//	copy(a.Payload(ref), data)
//
//	a.Release(ref)
//
// # Layout
//
// Every block, free or allocated, starts with a header holding a tag, the
// block's total size (header included) and, for free blocks, the offset of the
// next free block. Free blocks form an intrusive singly linked list kept in
// ascending offset order. See internal/format for the byte layout.
//
// References (Ref) are byte offsets of a payload from the start of the region.
// Offsets rather than pointers keep the region position independent, so a
// region mapped from a file can be attached again with Attach.
//
// # Allocation
//
// Alloc rounds the request up to the alignment boundary, adds one aligned
// header, and takes the first free block that is large enough. If what would be
// left over is smaller than one aligned header the whole block is handed out,
// otherwise the block is split and the tail stays on the free list.
//
// # Release
//
// Release inserts the block at its address-ordered position and merges it with
// the free blocks immediately before and after it when they are adjacent. A
// single release can merge in both directions.
//
// # Fatal errors
//
// A tag that does not match its role means the region is corrupt or the API was
// misused (double free, foreign reference, region never initialized). Those
// conditions panic with a *CorruptionError instead of returning an error; the
// allocator cannot repair a corrupted free list. Reallocate always panics.
//
// Building with the smmdebug tag re-validates every invariant after each
// mutating call.
//
// # Thread Safety
//
// Arena instances are not thread-safe. Callers must synchronize access
// externally.
package arena
