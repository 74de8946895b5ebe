package testcommon

import "math/rand"

// UniformSymbols returns n symbols drawn uniformly from [minVal, maxVal).
// The same seed always gives the same sequence.
func UniformSymbols(n int, minVal uint64, maxVal uint64, seed int64) []uint64 {
	rnd := rand.New(rand.NewSource(seed))
	res := make([]uint64, n)
	span := int64(maxVal - minVal)
	for i := range res {
		res[i] = minVal + uint64(rnd.Int63n(span))
	}
	return res
}

// GeometricSymbols returns n symbols counting the failures before the first
// success of a Bernoulli(p) trial, so small values dominate.
func GeometricSymbols(n int, p float64, seed int64) []uint64 {
	rnd := rand.New(rand.NewSource(seed))
	res := make([]uint64, n)
	for i := range res {
		v := uint64(0)
		for rnd.Float64() >= p {
			v++
		}
		res[i] = v
	}
	return res
}
