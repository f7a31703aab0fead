// Copyright 2026 SimpleAI Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dataset provides the public API for loading training data.
//
// Datasets produce flat float32 arrays with one-hot labels, ready to be
// reshaped into backend tensors:
//
//	reg := dataset.NewDefaultRegistry()
//	ds, _ := reg.Get("mnist")
//	arrays, _ := ds.Load(ctx, dataset.WithSeed(42))
package dataset

import (
	"github.com/GabrielDeml/simpleaiv2-sub001/internal/dataset"
)

// Dataset is a named source of training and test examples.
type Dataset = dataset.Dataset

// Metadata describes a dataset's shape and size.
type Metadata = dataset.Metadata

// Arrays holds a dataset's examples as flat row-major buffers.
type Arrays = dataset.Arrays

// Tensors holds a dataset uploaded to a backend.
type Tensors = dataset.Tensors

// Registry maps dataset names to factories.
type Registry = dataset.Registry

// Factory constructs a fresh dataset instance.
type Factory = dataset.Factory

// LoadOption tunes a single Load call.
type LoadOption = dataset.LoadOption

// Errors returned by datasets.
var (
	ErrNotLoaded       = dataset.ErrNotLoaded
	ErrDataUnavailable = dataset.ErrDataUnavailable
	ErrUnknownDataset  = dataset.ErrUnknownDataset
	ErrLoadInFlight    = dataset.ErrLoadInFlight
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry { return dataset.NewRegistry() }

// NewDefaultRegistry creates a registry with every built-in dataset
// registered.
func NewDefaultRegistry() *Registry { return dataset.NewDefaultRegistry() }

// NewMNIST creates the MNIST handwritten digit dataset, fetched over HTTP on
// first load.
func NewMNIST() *dataset.MNIST { return dataset.NewMNIST() }

// NewShapes creates the synthetic geometric shapes dataset.
func NewShapes() *dataset.Shapes { return dataset.NewShapes() }

// NewSentiment creates the synthetic sentiment text dataset.
func NewSentiment() *dataset.Sentiment { return dataset.NewSentiment() }

// WithoutShuffle disables the default example shuffling.
func WithoutShuffle() LoadOption { return dataset.WithoutShuffle() }

// WithSeed makes shuffling deterministic for the given seed.
func WithSeed(seed int64) LoadOption { return dataset.WithSeed(seed) }

// WithoutCache bypasses the dataset's array cache.
func WithoutCache() LoadOption { return dataset.WithoutCache() }

// WithTrainSampleRatio keeps only the leading fraction of training examples.
func WithTrainSampleRatio(ratio float64) LoadOption {
	return dataset.WithTrainSampleRatio(ratio)
}

// WithTestSampleRatio keeps only the leading fraction of test examples.
func WithTestSampleRatio(ratio float64) LoadOption {
	return dataset.WithTestSampleRatio(ratio)
}
