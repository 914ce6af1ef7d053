// Package prng implements the deterministic, reproducible-random stream
// used to place metadata sectors across a page and across a file.
//
// The reference implementation (colorsafe's Python original) seeds
// Python's Mersenne-Twister-backed random.shuffle per page number and
// once globally with seed 0. Porting MT19937 bit-for-bit is unnecessary
// here: the format only requires that placement be reproducible across
// runs of this module, not bit-identical to the Python original. We use
// the explicit alternative the spec allows: a named 32-bit LCG driving
// a Fisher-Yates shuffle.
package prng

// LCG is a 32-bit linear congruential generator using the Numerical
// Recipes constants. It is never used for anything security sensitive;
// it exists purely to make sector placement reproducible from a seed.
type LCG struct {
	state uint32
}

const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
)

// New creates an LCG seeded directly from seed. Two seeds are load
// bearing for the wire format and must never change: the page number
// (intra-page metadata placement) and the constant 0 (cross-page
// metadata distribution).
func New(seed int64) *LCG {
	return &LCG{state: uint32(seed)}
}

// Next returns the next pseudo-random 32-bit value in the stream.
func (l *LCG) Next() uint32 {
	l.state = l.state*lcgMultiplier + lcgIncrement
	return l.state
}

// Intn returns a pseudo-random int in [0, n). n must be positive.
func (l *LCG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(l.Next() % uint32(n))
}

// Permutation returns a Fisher-Yates shuffle of [0, n) driven by this
// generator's stream. The shuffle walks from the end of the slice
// backward, matching the canonical in-place Fisher-Yates algorithm.
func (l *LCG) Permutation(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := l.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

// Permute returns a fresh Fisher-Yates permutation of [0, n) seeded by
// seed, in one call. This is the entry point used by page/file layout.
func Permute(seed int64, n int) []int {
	return New(seed).Permutation(n)
}
