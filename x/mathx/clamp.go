package mathx

import "golang.org/x/exp/constraints"

// Clamp bounds v to the closed range between lo and hi, in either order.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if lo > hi {
		lo, hi = hi, lo
	}
	return Max(lo, Min(v, hi))
}

// Min returns the smaller of a and b.
func Min[T constraints.Ordered](a, b T) T {
	if b < a {
		return b
	}
	return a
}

// Max returns the larger of a and b.
func Max[T constraints.Ordered](a, b T) T {
	if b > a {
		return b
	}
	return a
}
