package arena

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/smmkit/internal/format"
)

func TestInitSingleFreeBlock(t *testing.T) {
	a, region := newTestArena(t, 1024, 0xF)

	require.Equal(t, 0xF, a.AlignMask())
	require.Equal(t, 32, a.HeaderSize())
	require.Equal(t, 1, a.FreeBlockCount())

	blocks := a.FreeBlocks()
	require.Len(t, blocks, 1)
	require.Equal(t, 32, blocks[0].Offset)
	require.Equal(t, 1024, blocks[0].Size)
	require.Equal(t, TagFree, blocks[0].Tag)
	require.Equal(t, format.NilOffset, blocks[0].Next)

	d, err := format.ParseDescriptor(region)
	require.NoError(t, err)
	require.Equal(t, format.DescriptorMagic, d.Magic)
	require.Equal(t, 0xF, d.AlignMask)
	require.Equal(t, 32, d.Head)
	require.Equal(t, len(region), d.RegionSize)
	requireInvariants(t, region)
}

func TestInitErrors(t *testing.T) {
	t.Run("bad mask", func(t *testing.T) {
		for _, mask := range []int{-1, 0xE, 0x10, 0xF0} {
			_, err := Init(AlignedBuffer(256, 0xF), mask, nil)
			require.ErrorIs(t, err, ErrBadAlignMask, "mask 0x%X", mask)
		}
	})

	t.Run("misaligned region", func(t *testing.T) {
		region := AlignedBuffer(257, 0xF)
		_, err := Init(region[1:], 0xF, nil)
		require.ErrorIs(t, err, ErrMisalignedRegion)
	})

	t.Run("too small", func(t *testing.T) {
		_, err := Init(AlignedBuffer(63, 0xF), 0xF, nil)
		require.ErrorIs(t, err, ErrRegionTooSmall)

		_, err = Init(nil, 0xF, nil)
		require.ErrorIs(t, err, ErrRegionTooSmall)
	})

	t.Run("region untouched on error", func(t *testing.T) {
		region := AlignedBuffer(48, 0xF)
		for i := range region {
			region[i] = 0xCC
		}
		_, err := Init(region, 0xF, nil)
		require.Error(t, err)
		for i, b := range region {
			require.Equal(t, byte(0xCC), b, "byte %d modified", i)
		}
	})
}

func TestInitMinimumRegion(t *testing.T) {
	region := AlignedBuffer(format.MinRegionSize(0xF), 0xF)
	a, err := Init(region, 0xF, nil)
	require.NoError(t, err)
	require.Equal(t, 32, a.Usable())

	_, ok := a.Alloc(1)
	require.False(t, ok, "one payload byte needs 48 bytes")

	ref, ok := a.Alloc(0)
	require.True(t, ok)
	require.Equal(t, Ref(64), ref)
	require.Equal(t, 0, a.FreeBlockCount())
	require.Empty(t, a.Payload(ref))

	a.Release(ref)
	require.Equal(t, 1, a.FreeBlockCount())
	requireInvariants(t, region)
}

func TestInitByteAlignment(t *testing.T) {
	raw := AlignedBuffer(257, 0xF)
	region := raw[1:] // any start address is fine with mask 0

	a, err := Init(region, 0, nil)
	require.NoError(t, err)
	require.Equal(t, format.BlockHeaderSize, a.HeaderSize())
	require.Equal(t, 256-format.DescriptorSize, a.Usable())

	ref, ok := a.Alloc(5)
	require.True(t, ok)
	require.Equal(t, 5+format.BlockHeaderSize, a.BlockSize(ref))
	requireInvariants(t, region)
}

func TestAlignedBuffer(t *testing.T) {
	for _, mask := range []int{0, 1, 7, 0xF, 0x3F, 0xFFF} {
		for _, size := range []int{1, 100, 4096} {
			b := AlignedBuffer(size, mask)
			require.Len(t, b, size)
			require.Equal(t, size, cap(b))
			require.True(t, addrAligned(b, 0, mask), "size %d mask 0x%X", size, mask)
		}
	}
	require.Panics(t, func() { AlignedBuffer(16, 0xE) })
	require.Panics(t, func() { AlignedBuffer(-1, 0xF) })
}

func TestAttach(t *testing.T) {
	a, region := newTestArena(t, 1024, 0xF)
	r1, ok := a.Alloc(100)
	require.True(t, ok)
	r2, ok := a.Alloc(10)
	require.True(t, ok)
	a.Release(r1)

	b, err := Attach(region, nil)
	require.NoError(t, err)
	require.Equal(t, a.FreeBlocks(), b.FreeBlocks())
	require.Equal(t, a.Stats(), b.Stats())

	// state written through one handle is visible through the other
	b.Release(r2)
	require.Equal(t, 1, a.FreeBlockCount())
	requireInvariants(t, region)
}

func TestAttachErrors(t *testing.T) {
	t.Run("not an arena", func(t *testing.T) {
		_, err := Attach(AlignedBuffer(256, 0xF), nil)
		require.ErrorIs(t, err, ErrNotArena)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := Attach(AlignedBuffer(8, 0xF), nil)
		require.ErrorIs(t, err, ErrRegionTooSmall)
	})

	t.Run("size mismatch", func(t *testing.T) {
		_, region := newTestArena(t, 256, 0xF)
		_, err := Attach(region[:len(region)-16], nil)
		require.ErrorIs(t, err, ErrSizeMismatch)
	})

	t.Run("bad mask", func(t *testing.T) {
		_, region := newTestArena(t, 256, 0xF)
		format.PutU32(region, format.DescriptorMaskOffset, 0xE)
		_, err := Attach(region, nil)
		require.ErrorIs(t, err, ErrBadAlignMask)
	})

	t.Run("misaligned", func(t *testing.T) {
		raw := AlignedBuffer(300, 0xF)
		region := raw[8 : 8+256]
		_, err := Init(region, 0x7, nil)
		require.NoError(t, err)
		format.PutU32(region, format.DescriptorMaskOffset, 0xF)
		_, err = Attach(region, nil)
		require.ErrorIs(t, err, ErrMisalignedRegion)
	})
}
