package arena

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/smmkit/arena/verify"
	"github.com/joshuapare/smmkit/internal/format"
)

// newTestArena creates an arena whose usable area is exactly usable bytes.
func newTestArena(t testing.TB, usable, mask int) (*Arena, []byte) {
	t.Helper()
	region := AlignedBuffer(format.AlignedDescriptorSize(mask)+usable, mask)
	a, err := Init(region, mask, nil)
	require.NoError(t, err)
	require.Equal(t, usable, a.Usable())
	return a, region
}

// requireCorruption runs fn and asserts that it panics with a *CorruptionError.
func requireCorruption(t testing.TB, fn func()) *CorruptionError {
	t.Helper()
	var got any
	func() {
		defer func() { got = recover() }()
		fn()
	}()
	require.NotNil(t, got, "expected a corruption panic")
	ce, ok := got.(*CorruptionError)
	require.True(t, ok, "panic value is %T: %v", got, got)
	require.ErrorIs(t, ce, ErrCorrupt)
	return ce
}

// requireInvariants validates the region bytes independently of the arena.
func requireInvariants(t testing.TB, region []byte) {
	t.Helper()
	require.NoError(t, verify.AllInvariants(region))
}

// addrAligned reports whether region[off] sits on the mask boundary in memory.
func addrAligned(region []byte, off, mask int) bool {
	p := unsafe.Add(unsafe.Pointer(unsafe.SliceData(region)), off)
	return uintptr(p)&uintptr(mask) == 0
}

// recordingTracker collects every dirty range reported by the arena.
type recordingTracker struct {
	ranges [][2]int
}

func (r *recordingTracker) Add(off, length int) {
	r.ranges = append(r.ranges, [2]int{off, length})
}

func (r *recordingTracker) covers(off, length int) bool {
	for _, rg := range r.ranges {
		if rg[0] <= off && off+length <= rg[0]+rg[1] {
			return true
		}
	}
	return false
}
