// Package bits holds tiny generic numeric helpers in the style of
// lollipop's mathutils package. NextPowerOfTwo sizes pkg/bloom's filters;
// Min and Max have no caller in this module.
package bits

import "golang.org/x/exp/constraints"

func Max[T constraints.Ordered](x, y T) T {
	if x < y {
		return y
	}
	return x
}

func Min[T constraints.Ordered](x, y T) T {
	if y < x {
		return y
	}
	return x
}

// NextPowerOfTwo rounds n up to the next power of two. n <= 1 returns 1.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
