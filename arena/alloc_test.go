package arena

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/smmkit/internal/format"
)

// Test_ScenarioB exercises whole-block consumption on a 120-byte usable area.
func Test_ScenarioB(t *testing.T) {
	a, region := newTestArena(t, 120, 0xF)

	ref, ok := a.Alloc(60)
	require.True(t, ok)
	require.Equal(t, 120, a.BlockSize(ref), "remainder of 24 cannot hold a header, block consumed whole")
	require.Equal(t, 0, a.FreeBlockCount())

	_, ok = a.Alloc(60)
	require.False(t, ok)

	a.Release(ref)
	require.Equal(t, 1, a.FreeBlockCount())

	ref, ok = a.Alloc(70)
	require.True(t, ok)
	require.Equal(t, 120, a.BlockSize(ref))
	requireInvariants(t, region)
}

// Test_ScenarioC checks that a zero-size request still takes one header.
func Test_ScenarioC(t *testing.T) {
	a, region := newTestArena(t, 1024, 0xF)

	ref, ok := a.Alloc(0)
	require.True(t, ok)
	require.NotEqual(t, NilRef, ref)
	require.True(t, format.Aligned(int(ref), 0xF))
	require.Equal(t, 32, a.BlockSize(ref))
	require.Empty(t, a.Payload(ref))

	a.Release(ref)
	require.Equal(t, 1, a.FreeBlockCount())
	require.Equal(t, 1024, a.FreeBlocks()[0].Size)
	requireInvariants(t, region)
}

func TestAllocSplitBoundary(t *testing.T) {
	tests := []struct {
		name      string
		usable    int
		wantSize  int
		wantFree  int
		wantFirst int // size of the remaining free block, 0 if none
	}{
		{name: "remainder exactly one header splits", usable: 128, wantSize: 96, wantFree: 1, wantFirst: 32},
		{name: "remainder below one header is consumed", usable: 112, wantSize: 112, wantFree: 0},
		{name: "exact fit", usable: 96, wantSize: 96, wantFree: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, region := newTestArena(t, tt.usable, 0xF)
			ref, ok := a.Alloc(60)
			require.True(t, ok)
			require.Equal(t, Ref(64), ref)
			require.Equal(t, tt.wantSize, a.BlockSize(ref))
			require.Equal(t, tt.wantFree, a.FreeBlockCount())
			if tt.wantFree > 0 {
				fb := a.FreeBlocks()[0]
				require.Equal(t, 32+tt.wantSize, fb.Offset)
				require.Equal(t, tt.wantFirst, fb.Size)
			}
			requireInvariants(t, region)
		})
	}
}

func TestAllocFirstFit(t *testing.T) {
	a, region := newTestArena(t, 1024, 0xF)

	big, ok := a.Alloc(100) // 144 bytes at 0x20
	require.True(t, ok)
	r1, _ := a.Alloc(10) // 48 bytes at 0xB0
	small, _ := a.Alloc(10)
	r3, _ := a.Alloc(10)
	require.Equal(t, Ref(0xB0+32), r1)

	a.Release(big)
	a.Release(small)
	require.Equal(t, 3, a.FreeBlockCount())

	// a best-fit allocator would pick the 48-byte hole, first fit takes the
	// lower 144-byte block and splits it
	ref, ok := a.Alloc(10)
	require.True(t, ok)
	require.Equal(t, big, ref)
	require.Equal(t, 48, a.BlockSize(ref))

	blocks := a.FreeBlocks()
	require.Len(t, blocks, 3)
	require.Equal(t, 0x20+48, blocks[0].Offset)
	require.Equal(t, 96, blocks[0].Size)
	require.Equal(t, int(small)-32, blocks[1].Offset)

	_ = r3
	requireInvariants(t, region)
}

func TestAllocNoFit(t *testing.T) {
	a, region := newTestArena(t, 256, 0xF)
	before := append([]byte(nil), region...)

	for _, size := range []int{-1, -1 << 40, 225, 1 << 20, int(^uint(0) >> 1)} {
		ref, ok := a.Alloc(size)
		require.False(t, ok, "size %d", size)
		require.Equal(t, NilRef, ref)
	}
	require.Equal(t, before, region, "failed allocations must not write")

	ref, ok := a.Alloc(224)
	require.True(t, ok, "largest request that fits")
	require.Equal(t, 256, a.BlockSize(ref))
}

func TestAllocExhaust(t *testing.T) {
	a, region := newTestArena(t, 48*20, 0xF)
	var refs []Ref
	for {
		ref, ok := a.Alloc(16)
		if !ok {
			break
		}
		refs = append(refs, ref)
	}
	require.Len(t, refs, 20)
	require.Equal(t, 0, a.FreeBlockCount())
	for i := 1; i < len(refs); i++ {
		require.Equal(t, 48, int(refs[i]-refs[i-1]))
	}
	requireInvariants(t, region)
}

func TestAllocAlignment(t *testing.T) {
	for _, mask := range []int{0, 0x7, 0xF, 0x3F, 0xFFF} {
		hdr := format.AlignedHeaderSize(mask)
		a, region := newTestArena(t, 64*hdr+8192, mask)
		for size := 0; ; size += 13 {
			ref, ok := a.Alloc(size)
			if !ok {
				break
			}
			require.True(t, format.Aligned(int(ref), mask), "mask 0x%X size %d ref 0x%X", mask, size, ref)
			require.True(t, addrAligned(region, int(ref), mask))
			require.True(t, addrAligned(region, int(ref)-hdr, mask))
			require.GreaterOrEqual(t, len(a.Payload(ref)), size)
		}
		requireInvariants(t, region)
	}
}

// TestPayloadIsolation writes a distinct pattern into every payload and checks
// that no allocation or release disturbs a neighbour.
func TestPayloadIsolation(t *testing.T) {
	a, region := newTestArena(t, 4096, 0xF)
	sizes := []int{1, 15, 16, 17, 31, 32, 100, 0, 7}
	refs := make([]Ref, len(sizes))
	for i, size := range sizes {
		ref, ok := a.Alloc(size)
		require.True(t, ok)
		refs[i] = ref
		p := a.Payload(ref)
		require.Equal(t, format.AlignUp(size, 0xF), len(p))
		for j := range p {
			p[j] = byte(i + 1)
		}
	}

	// release every other block and reallocate into the holes
	for i := 0; i < len(refs); i += 2 {
		a.Release(refs[i])
	}
	for i := 0; i < len(refs); i += 2 {
		ref, ok := a.Alloc(sizes[i])
		require.True(t, ok)
		refs[i] = ref
		p := a.Payload(ref)
		for j := range p {
			p[j] = byte(i + 1)
		}
	}

	for i, ref := range refs {
		require.Equal(t, bytes.Repeat([]byte{byte(i + 1)}, len(a.Payload(ref))), a.Payload(ref), "block %d", i)
	}
	requireInvariants(t, region)
}

func TestReallocateUnsupported(t *testing.T) {
	a, _ := newTestArena(t, 256, 0xF)
	ref, ok := a.Alloc(8)
	require.True(t, ok)
	require.PanicsWithValue(t, ErrReallocUnsupported, func() { a.Reallocate(ref, 16) })
	require.PanicsWithValue(t, ErrReallocUnsupported, func() { a.Reallocate(NilRef, 0) })
}

func TestAllocLogsDecisions(t *testing.T) {
	var out bytes.Buffer
	log := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	region := AlignedBuffer(32+120, 0xF)
	a, err := Init(region, 0xF, &Options{Logger: log})
	require.NoError(t, err)

	ref, ok := a.Alloc(60)
	require.True(t, ok)
	_, ok = a.Alloc(1)
	require.False(t, ok)
	a.Release(ref)

	logs := out.String()
	require.Contains(t, logs, "arena: init")
	require.Contains(t, logs, "alloc: consume")
	require.Contains(t, logs, "alloc: no fit")
}

func TestDirtyTracking(t *testing.T) {
	rec := &recordingTracker{}
	region := AlignedBuffer(32+1024, 0xF)
	a, err := Init(region, 0xF, &Options{Tracker: rec})
	require.NoError(t, err)
	require.True(t, rec.covers(0, format.DescriptorSize))
	require.True(t, rec.covers(32, format.BlockHeaderSize))

	rec.ranges = nil
	ref, ok := a.Alloc(10)
	require.True(t, ok)
	require.True(t, rec.covers(32, format.BlockHeaderSize), "allocated header")
	require.True(t, rec.covers(80, format.BlockHeaderSize), "split tail header")
	require.True(t, rec.covers(format.DescriptorHeadOffset, 8), "list head")

	rec.ranges = nil
	a.Release(ref)
	require.True(t, rec.covers(32, format.BlockHeaderSize))
	require.True(t, rec.covers(80+format.BlockTagOffset, 4), "absorbed header scrubbed")

	for _, rg := range rec.ranges {
		require.GreaterOrEqual(t, rg[0], 0)
		require.LessOrEqual(t, rg[0]+rg[1], len(region))
	}
}
