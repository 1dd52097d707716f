package arena

import (
	"errors"
	"fmt"
)

var (
	// ErrBadAlignMask indicates the alignment mask is not of the form 2^k-1.
	ErrBadAlignMask = errors.New("arena: alignment mask must be 2^k-1")

	// ErrMisalignedRegion indicates the region start does not satisfy the alignment mask.
	ErrMisalignedRegion = errors.New("arena: region start is not aligned")

	// ErrRegionTooSmall indicates the region cannot hold a descriptor and one block header.
	ErrRegionTooSmall = errors.New("arena: region too small")

	// ErrNotArena indicates Attach found no arena descriptor at the start of the region.
	ErrNotArena = errors.New("arena: region is not an initialized arena")

	// ErrSizeMismatch indicates the descriptor records a different region size.
	ErrSizeMismatch = errors.New("arena: recorded region size does not match")

	// ErrCorrupt is wrapped by every CorruptionError.
	ErrCorrupt = errors.New("arena: corrupted region")

	// ErrReallocUnsupported is the panic value of Reallocate.
	ErrReallocUnsupported = errors.New("arena: reallocate is not supported, allocate, copy and release instead")
)

// CorruptionError is the panic value raised when the arena observes a header
// that does not match its expected role, or an offset that cannot be valid.
type CorruptionError struct {
	Op     string // operation that observed the problem
	Offset int    // region offset of the offending header, -1 when not tied to one
	Msg    string
}

func (e *CorruptionError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("arena: %s: corruption at offset 0x%X: %s", e.Op, e.Offset, e.Msg)
	}
	return fmt.Sprintf("arena: %s: corruption: %s", e.Op, e.Msg)
}

func (e *CorruptionError) Unwrap() error { return ErrCorrupt }

func corrupt(op string, off int, format string, args ...any) {
	panic(&CorruptionError{Op: op, Offset: off, Msg: fmt.Sprintf(format, args...)})
}
