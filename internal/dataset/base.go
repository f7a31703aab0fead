package dataset

import (
	"context"
	"math"
)

// producer computes the full, unshuffled dataset arrays. Implementations may
// perform I/O; failures must be wrapped in ErrDataUnavailable by the caller
// or the producer itself.
type producer func(ctx context.Context) (*Arrays, error)

// base implements the caching, sampling and shuffling half of the Dataset
// contract around a producer. Concrete datasets embed it and supply their
// metadata and producer.
//
// base is deliberately lock-free: datasets are single-owner objects. The
// loading flag only guards against re-entrant use, not true concurrency.
type base struct {
	meta    Metadata
	produce producer

	cached  *Arrays
	loading bool
}

// Metadata describes the dataset.
func (b *base) Metadata() Metadata { return b.meta }

// Load implements Dataset.Load. See the interface documentation for the
// option semantics.
func (b *base) Load(ctx context.Context, opts ...LoadOption) (*Arrays, error) {
	o, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	if o.cache && b.cached != nil {
		return b.cached, nil
	}
	if b.loading {
		return nil, ErrLoadInFlight
	}
	b.loading = true
	defer func() { b.loading = false }()

	full, err := b.produce(ctx)
	if err != nil {
		return nil, err
	}

	rowSize := b.meta.ExampleSize()
	labelSize := b.meta.NumClasses
	random := o.randomSource()

	result := &Arrays{}
	result.TrainImages, result.TrainLabels = arrange(
		full.TrainImages, full.TrainLabels, rowSize, labelSize, o.trainRatio, o.shuffle, random)
	result.TestImages, result.TestLabels = arrange(
		full.TestImages, full.TestLabels, rowSize, labelSize, o.testRatio, o.shuffle, random)

	if o.cache {
		b.cached = result
	}
	return result, nil
}

// ClearCache drops the retained arrays. It is an error to clear while a load
// is in flight.
func (b *base) ClearCache() error {
	if b.loading {
		return ErrLoadInFlight
	}
	b.cached = nil
	return nil
}

// arrange applies sample-ratio truncation (before shuffling, on the ordered
// prefix) and then gathers rows through a permutation, yielding fresh copies
// whose image/label pairing is preserved.
func arrange(images, labels []float32, rowSize, labelSize int, ratio float64, shuffle bool, random func() float64) ([]float32, []float32) {
	n := len(labels) / labelSize
	if ratio < 1 {
		n = int(math.Floor(float64(n) * ratio))
	}
	images = images[:n*rowSize]
	labels = labels[:n*labelSize]

	var indices []int
	if shuffle {
		indices = permutation(n, random)
	} else {
		indices = identity(n)
	}
	return gather(images, rowSize, indices), gather(labels, labelSize, indices)
}
