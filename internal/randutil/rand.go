// Package randutil builds reproducible random sources for dealing.
package randutil

import rand "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed. Tables
// seeded with the same value deal the same cards.
func New(seed int64) *rand.Rand {
	return Stream(seed, 0)
}

// Stream returns the n-th independent source derived from seed. A server
// started with one seed gives table n stream n, so tables never share a
// sequence and seed s table 2 does not repeat seed s+1 table 1.
func Stream(seed int64, n uint64) *rand.Rand {
	u := uint64(seed)
	lo := mix(u ^ mix(n))
	hi := mix(u + goldenRatio64 + n*goldenRatio64)
	return rand.New(rand.NewPCG(lo, hi))
}

// splitmix64 finaliser
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
