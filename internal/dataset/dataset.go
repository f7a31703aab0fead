// Package dataset provides the standardized multi-dataset loading interface:
// every dataset produces flat numeric arrays (images or token sequences plus
// one-hot labels) and metadata, owns a single in-memory cache, and can
// convert its arrays into structured backend tensors.
//
// Datasets are single-owner objects matching an event-loop usage model: no
// internal locking is performed, and concurrent access is the caller's
// responsibility. Duplicate loads are guarded by an in-flight flag; clearing
// the cache while a load is in flight is a caller error and is rejected.
package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/GabrielDeml/simpleaiv2-sub001/internal/ml"
)

// Common errors.
var (
	// ErrNotLoaded is returned by accessors invoked before the underlying
	// source has been loaded.
	ErrNotLoaded = errors.New("dataset not loaded")

	// ErrDataUnavailable wraps network or decode failures of the underlying
	// source. No partial data is ever returned.
	ErrDataUnavailable = errors.New("dataset source unavailable")

	// ErrUnknownDataset is returned by registry lookups for unregistered
	// names.
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrLoadInFlight is returned when a load or cache clear overlaps an
	// in-flight load on the same instance.
	ErrLoadInFlight = errors.New("dataset load already in flight")
)

// Metadata is an immutable description of a dataset.
type Metadata struct {
	Name        string
	Description string

	// InputShape lists the spatial dimensions of one example, e.g. [28,28]
	// for images or [150] for a token sequence.
	InputShape []int
	Channels   int
	NumClasses int

	TrainSize int
	TestSize  int

	// ClassNames is ordered and has NumClasses entries.
	ClassNames []string
}

// ExampleSize returns the number of values in one example
// (product of InputShape times Channels).
func (m Metadata) ExampleSize() int {
	n := m.Channels
	for _, d := range m.InputShape {
		n *= d
	}
	return n
}

// Arrays holds flat, row-major numeric buffers, one row per example.
// Labels are one-hot: per example exactly one of the NumClasses consecutive
// values is 1.
type Arrays struct {
	TrainImages []float32
	TrainLabels []float32
	TestImages  []float32
	TestLabels  []float32
}

// TrainCount returns the number of training examples given the per-example
// label width.
func (a *Arrays) TrainCount(numClasses int) int { return len(a.TrainLabels) / numClasses }

// TestCount returns the number of test examples given the per-example label
// width.
func (a *Arrays) TestCount(numClasses int) int { return len(a.TestLabels) / numClasses }

// Dataset is the abstract contract every dataset implements.
type Dataset interface {
	// Metadata describes the dataset. Pure, no I/O.
	Metadata() Metadata

	// Load produces the dataset's flat arrays. By default the result is
	// shuffled and cached; see the LoadOption constructors. A cached result
	// is returned verbatim (same *Arrays) until ClearCache.
	Load(ctx context.Context, opts ...LoadOption) (*Arrays, error)

	// LoadTensors loads the flat arrays and reshapes them into backend
	// tensors: rank 4 for image datasets ([batch, d0, d1, channels]), rank 2
	// for sequence datasets ([batch, seqLen]); labels are always rank 2.
	// The caller owns the returned tensors and must Release them.
	LoadTensors(ctx context.Context, backend ml.Backend, opts ...LoadOption) (*Tensors, error)

	// ClearCache drops any retained arrays so the next Load recomputes.
	// It fails with ErrLoadInFlight while a load is running.
	ClearCache() error
}

// loadOptions is the resolved option set. Shuffling and caching default to
// on; sampling ratios default to the full set.
type loadOptions struct {
	shuffle    bool
	seeded     bool
	seed       int64
	trainRatio float64
	testRatio  float64
	cache      bool
}

// LoadOption customizes a single Load call.
type LoadOption func(*loadOptions)

// WithoutShuffle disables shuffling for this load.
func WithoutShuffle() LoadOption {
	return func(o *loadOptions) { o.shuffle = false }
}

// WithSeed makes shuffling a deterministic permutation, reproducible across
// runs for the same seed and input size.
func WithSeed(seed int64) LoadOption {
	return func(o *loadOptions) { o.seeded, o.seed = true, seed }
}

// WithoutCache forces recomputation and skips storing the result.
func WithoutCache() LoadOption {
	return func(o *loadOptions) { o.cache = false }
}

// WithTrainSampleRatio truncates the training set to a prefix of
// floor(trainSize*ratio) examples before shuffling. ratio must be in (0,1].
func WithTrainSampleRatio(ratio float64) LoadOption {
	return func(o *loadOptions) { o.trainRatio = ratio }
}

// WithTestSampleRatio truncates the test set to a prefix of
// floor(testSize*ratio) examples before shuffling. ratio must be in (0,1].
func WithTestSampleRatio(ratio float64) LoadOption {
	return func(o *loadOptions) { o.testRatio = ratio }
}

func resolveOptions(opts []LoadOption) (loadOptions, error) {
	o := loadOptions{
		shuffle:    true,
		cache:      true,
		trainRatio: 1,
		testRatio:  1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.trainRatio <= 0 || o.trainRatio > 1 {
		return o, fmt.Errorf("train sample ratio %v outside (0,1]", o.trainRatio)
	}
	if o.testRatio <= 0 || o.testRatio > 1 {
		return o, fmt.Errorf("test sample ratio %v outside (0,1]", o.testRatio)
	}
	return o, nil
}
