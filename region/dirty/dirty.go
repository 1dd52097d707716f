// Package dirty tracks the byte ranges an arena writes into a file-backed
// region and flushes only the pages they touch.
//
// Ranges are recorded as they arrive, then page-aligned, sorted and merged at
// flush time. Flushing uses msync on mapped platforms and positioned writes
// elsewhere, followed by a data sync of the file.
package dirty

import (
	"context"
	"os"
	"sort"

	"github.com/joshuapare/smmkit/region"
)

// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
const defaultRangeCapacity = 64

// FlushMode controls durability of Flush.
type FlushMode int

const (
	// FlushAuto writes back dirty pages and then syncs file data.
	FlushAuto FlushMode = iota

	// FlushDataOnly writes back dirty pages only. The caller syncs later.
	FlushDataOnly

	// FlushFull is FlushAuto plus F_FULLFSYNC on macOS.
	FlushFull
)

// Range is a dirty byte range of the region.
type Range struct {
	Off int64
	Len int64
}

// End returns the offset just past the range.
func (r Range) End() int64 { return r.Off + r.Len }

// Tracker accumulates dirty ranges and flushes them.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	r        *region.Region
	ranges   []Range
	pageSize int64
}

// NewTracker creates a dirty tracker for r.
func NewTracker(r *region.Region) *Tracker {
	return &Tracker{
		r:        r,
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: int64(os.Getpagesize()),
	}
}

// Add records a dirty range. It only appends; alignment and merging happen at
// flush time. Empty and negative ranges are ignored.
func (t *Tracker) Add(off, length int) {
	if off < 0 || length <= 0 {
		return
	}
	t.ranges = append(t.ranges, Range{Off: int64(off), Len: int64(length)})
}

// Len returns the number of recorded, uncoalesced ranges.
func (t *Tracker) Len() int { return len(t.ranges) }

// Flush writes every dirty page back to the file and, unless mode is
// FlushDataOnly, syncs the file data. Recorded ranges are cleared on success.
//
// The context is checked between ranges; a cancelled flush may have written
// some ranges and not others, and keeps all of them recorded.
func (t *Tracker) Flush(ctx context.Context, mode FlushMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data := t.r.Bytes()
	if len(data) == 0 || t.r.File() == nil {
		return region.ErrClosed
	}

	if len(t.ranges) > 0 {
		if err := t.flushRanges(ctx, data); err != nil {
			return err
		}
	}

	if mode != FlushDataOnly {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.sync(mode == FlushFull); err != nil {
			return err
		}
	}
	t.ranges = t.ranges[:0]
	return nil
}

// Reset clears all tracked ranges.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// DebugRanges returns a copy of the raw, uncoalesced ranges.
func (t *Tracker) DebugRanges() []Range {
	result := make([]Range, len(t.ranges))
	copy(result, t.ranges)
	return result
}

// DebugCoalescedRanges returns the page-aligned, sorted, merged ranges the
// next flush would write.
func (t *Tracker) DebugCoalescedRanges() []Range {
	return t.coalesce()
}

// coalesce page-aligns all ranges, sorts them, and merges overlapping or
// adjacent ones. Ranges are clipped to the region size.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}
	limit := t.r.Size()

	aligned := make([]Range, 0, len(t.ranges))
	for _, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize
		end := r.End()
		if end%t.pageSize != 0 {
			end = (end/t.pageSize + 1) * t.pageSize
		}
		end = min(end, limit)
		if start >= end {
			continue
		}
		aligned = append(aligned, Range{Off: start, Len: end - start})
	}
	if len(aligned) == 0 {
		return nil
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.End() {
			current.Len = max(current.End(), next.End()) - current.Off
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}
