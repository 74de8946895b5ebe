package util

import (
	"cmp"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// FloorLog2 of x, -1 for x == 0.
func FloorLog2(x uint64) int {
	return 63 - bits.LeadingZeros64(x)
}

func Clip[T constraints.Integer](v T, lo T, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PowChecked returns base^exp and false if the result would not fit in a
// uint64.
func PowChecked[T constraints.Unsigned](base T, exp int) (uint64, bool) {
	res := uint64(1)
	for i := 0; i < exp; i++ {
		hi, lo := bits.Mul64(res, uint64(base))
		if hi != 0 {
			return 0, false
		}
		res = lo
	}
	return res, true
}

func Max[T cmp.Ordered](args ...T) T {
	if len(args) == 0 {
		return *new(T)
	}

	if isNan(args[0]) {
		return args[0]
	}

	max := args[0]
	for _, arg := range args[1:] {

		if isNan(arg) {
			return arg
		}

		if arg > max {
			max = arg
		}
	}
	return max
}

func Min[T cmp.Ordered](args ...T) T {
	if len(args) == 0 {
		return *new(T)
	}

	if isNan(args[0]) {
		return args[0]
	}

	min := args[0]
	for _, arg := range args[1:] {

		if isNan(arg) {
			return arg
		}

		if arg < min {
			min = arg
		}
	}
	return min
}

func isNan[T comparable](arg T) bool {
	return arg != arg
}
