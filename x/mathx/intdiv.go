package mathx

import "golang.org/x/exp/constraints"

// RoundDiv returns floor((a + b/2)/b), classic rounding for unsigned values.
// b == 0 yields 0.
func RoundDiv[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b/2) / b
}

// ScaleU16 maps x in [0..full] onto the 16-bit code range [0..0xFFFF] with
// rounding. Inputs above full saturate at 0xFFFF; full == 0 yields 0.
func ScaleU16(x, full uint32) uint16 {
	if full == 0 {
		return 0
	}
	x = Clamp(x, 0, full)
	return uint16(RoundDiv(uint64(x)*0xFFFF, uint64(full)))
}
