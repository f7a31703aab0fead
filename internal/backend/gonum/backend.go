// Package gonum implements the ml boundary on top of gonum's dense matrix
// routines.
//
// It is a reference backend for fully connected networks: dense, dropout and
// flatten layers are supported, convolution and pooling are not and report
// ml.ErrUnsupportedLayer so callers can skip them. All numeric work happens
// on float64 matrices; tensors convert at the boundary.
package gonum

import (
	"fmt"
	"math/rand"

	"github.com/GabrielDeml/simpleaiv2-sub001/internal/ml"
)

// Backend builds and trains models with gonum.
type Backend struct {
	seed int64
}

var _ ml.Backend = (*Backend)(nil)

// New creates a backend seeded from the given value. Weight initialization,
// batch shuffling and dropout masks all derive from this seed, so two
// backends with the same seed train identically on the same data.
func New(seed int64) *Backend {
	return &Backend{seed: seed}
}

// Name returns "gonum".
func (b *Backend) Name() string { return "gonum" }

// NewTensor wraps data in a tensor of the given shape.
func (b *Backend) NewTensor(data []float32, shape ...int) (ml.Tensor, error) {
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return nil, fmt.Errorf("gonum: invalid dimension %d in shape %v", d, shape)
		}
		n *= d
	}
	if n != len(data) {
		return nil, fmt.Errorf("gonum: shape %v wants %d elements, got %d", shape, n, len(data))
	}
	return &tensor{data: data, shape: append([]int(nil), shape...)}, nil
}

// NewSequential starts building a sequential model. The input shape excludes
// the batch dimension; multi-dimensional inputs are flattened internally.
func (b *Backend) NewSequential(inputShape []int) (ml.SequentialBuilder, error) {
	if len(inputShape) == 0 {
		return nil, fmt.Errorf("gonum: empty input shape")
	}
	units := 1
	for _, d := range inputShape {
		if d <= 0 {
			return nil, fmt.Errorf("gonum: invalid dimension %d in input shape %v", d, inputShape)
		}
		units *= d
	}
	return &builder{
		backend:    b,
		inputUnits: units,
		rng:        rand.New(rand.NewSource(b.seed)),
	}, nil
}

type tensor struct {
	data     []float32
	shape    []int
	released bool
}

func (t *tensor) Shape() []int    { return t.shape }
func (t *tensor) Data() []float32 { return t.data }

func (t *tensor) Release() {
	t.released = true
	t.data = nil
}

// rows reinterprets the tensor as a matrix of n examples, flattening any
// trailing dimensions into a single row.
func (t *tensor) rows() (n, rowSize int, err error) {
	if t.released {
		return 0, 0, ml.ErrReleased
	}
	if len(t.shape) == 0 {
		return 0, 0, fmt.Errorf("gonum: scalar tensor has no batch dimension")
	}
	n = t.shape[0]
	rowSize = 1
	for _, d := range t.shape[1:] {
		rowSize *= d
	}
	return n, rowSize, nil
}
