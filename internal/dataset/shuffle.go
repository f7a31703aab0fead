package dataset

import "math/rand"

// lcg is the linear-congruential generator used for seeded shuffles. The
// exact recurrence is kept so a given seed yields the same permutation as
// other implementations of the same scheme.
type lcg struct {
	seed int64
}

const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// next returns a pseudo-random float in [0,1).
func (l *lcg) next() float64 {
	l.seed = (l.seed*lcgMultiplier + lcgIncrement) % lcgModulus
	if l.seed < 0 {
		l.seed += lcgModulus
	}
	return float64(l.seed) / lcgModulus
}

// randomSource returns the random source for a load: the seeded LCG when a
// seed was given, otherwise a uniform non-deterministic source.
func (o loadOptions) randomSource() func() float64 {
	if o.seeded {
		gen := &lcg{seed: o.seed}
		return gen.next
	}
	return rand.Float64
}

// permutation builds a Fisher-Yates permutation of [0..n) driven by random.
func permutation(n int, random func() float64) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	for i := n - 1; i >= 1; i-- {
		j := int(random() * float64(i+1))
		indices[i], indices[j] = indices[j], indices[i]
	}
	return indices
}

// identity builds the trivial permutation of [0..n).
func identity(n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

// gather copies whole example rows from src in permutation order, preserving
// the pairing between an example and its label when applied with the same
// permutation to both buffers.
func gather(src []float32, rowSize int, indices []int) []float32 {
	out := make([]float32, len(indices)*rowSize)
	for dst, srcIdx := range indices {
		copy(out[dst*rowSize:(dst+1)*rowSize], src[srcIdx*rowSize:(srcIdx+1)*rowSize])
	}
	return out
}
