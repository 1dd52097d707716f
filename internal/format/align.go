package format

// Alignment helpers. Masks are of the form 2^k-1 and round up to a 2^k byte
// boundary.

// ValidMask reports whether mask has the form 2^k-1 and fits the descriptor.
//
// Example:
//
//	ValidMask(0)    = true   // byte alignment
//	ValidMask(0xF)  = true
//	ValidMask(0xE)  = false
//	ValidMask(-1)   = false
func ValidMask(mask int) bool {
	return mask >= 0 && mask <= MaxAlignMask && mask&(mask+1) == 0
}

// AlignUp returns n rounded up to the boundary described by mask.
//
// Example:
//
//	AlignUp(1, 0xF)  = 16
//	AlignUp(16, 0xF) = 16
//	AlignUp(17, 0xF) = 32
//	AlignUp(0, 0xF)  = 0
func AlignUp(n, mask int) int {
	return (n + mask) &^ mask
}

// Aligned reports whether n sits on the boundary described by mask.
func Aligned(n, mask int) bool {
	return n&mask == 0
}

// AlignedDescriptorSize is the space the descriptor occupies under mask.
func AlignedDescriptorSize(mask int) int {
	return AlignUp(DescriptorSize, mask)
}

// AlignedHeaderSize is the space a block header occupies under mask. It is
// also the smallest possible block.
func AlignedHeaderSize(mask int) int {
	return AlignUp(BlockHeaderSize, mask)
}

// MinRegionSize is the smallest region that can hold a descriptor and one
// block under mask.
func MinRegionSize(mask int) int {
	return AlignedDescriptorSize(mask) + AlignedHeaderSize(mask)
}
