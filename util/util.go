package util

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// ArgMax returns the index of the largest element, -1 for an empty slice.
// Ties go to the first occurrence.
func ArgMax[A constraints.Ordered](xs []A) int {
	if len(xs) == 0 {
		return -1
	}
	best := 0
	for i, v := range xs {
		if v > xs[best] {
			best = i
		}
	}
	return best
}

// Max returns the largest element, or the zero value for an empty slice.
func Max[A constraints.Ordered](xs []A) A {
	var zero A
	if len(xs) == 0 {
		return zero
	}
	return xs[ArgMax(xs)]
}

// Median returns the middle value of xs without modifying it.
func Median[A constraints.Float](xs []A) A {
	if len(xs) == 0 {
		return 0
	}
	tmp := make([]A, len(xs))
	copy(tmp, xs)
	sort.Slice(tmp, func(i, j int) bool { return tmp[i] < tmp[j] })
	mid := len(tmp) / 2
	if len(tmp)%2 == 0 {
		return (tmp[mid-1] + tmp[mid]) / 2
	}
	return tmp[mid]
}

// Clamp limits v to the closed interval [lo, hi].
func Clamp[A constraints.Ordered](v, lo, hi A) A {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
