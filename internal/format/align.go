package format

// Align8 returns n aligned up to the next 8-byte boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
//	Align8(16) = 16
func Align8(n int) int {
	return (n + AlignmentMask) & ^AlignmentMask
}

// IsAligned reports whether n is a multiple of Alignment.
func IsAligned(n int) bool {
	return n&AlignmentMask == 0
}

// BlockSize returns the total block size needed for a payload of n bytes,
// before any minimum-size clamp.
func BlockSize(n int) int {
	return Align8(n + Overhead)
}

// PayloadSize returns the usable payload bytes of a block of the given size.
func PayloadSize(blockSize int) int {
	return blockSize - Overhead
}
