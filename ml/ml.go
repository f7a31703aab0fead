// Copyright 2026 SimpleAI Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ml provides the public API for the tensor/ML backend boundary.
//
// Implementations live under backend/; the Mock backend records calls for
// tests without doing numeric work.
package ml

import (
	"github.com/GabrielDeml/simpleaiv2-sub001/internal/ml"
)

// Backend is implemented by an external tensor/ML library.
type Backend = ml.Backend

// Tensor is an opaque handle to backend-owned numeric storage.
type Tensor = ml.Tensor

// SequentialBuilder assembles a sequential model layer by layer.
type SequentialBuilder = ml.SequentialBuilder

// Model is a compiled, trainable model handle.
type Model = ml.Model

// Activation names an activation function.
type Activation = ml.Activation

// Activations.
const (
	ActivationReLU    = ml.ActivationReLU
	ActivationSigmoid = ml.ActivationSigmoid
	ActivationTanh    = ml.ActivationTanh
	ActivationSoftmax = ml.ActivationSoftmax
	ActivationLinear  = ml.ActivationLinear
)

// Loss names a loss function.
type Loss = ml.Loss

// Losses.
const (
	LossCategoricalCrossentropy = ml.LossCategoricalCrossentropy
	LossBinaryCrossentropy      = ml.LossBinaryCrossentropy
	LossMeanSquaredError        = ml.LossMeanSquaredError
)

// Layer and model configuration.
type (
	DenseSpec       = ml.DenseSpec
	Conv2DSpec      = ml.Conv2DSpec
	MaxPool2DSpec   = ml.MaxPool2DSpec
	OptimizerConfig = ml.OptimizerConfig
	CompileConfig   = ml.CompileConfig
	FitConfig       = ml.FitConfig
	EpochMetrics    = ml.EpochMetrics
)

// StopFlag is a caller-visible halt request, inspected between epochs.
type StopFlag = ml.StopFlag

// Common errors.
var (
	ErrUnsupportedLayer = ml.ErrUnsupportedLayer
	ErrReleased         = ml.ErrReleased
)

// Mock is a recording backend for tests.
type Mock = ml.Mock

// NewMock creates a recording mock backend. The listed layer kinds are
// rejected with ErrUnsupportedLayer.
func NewMock(unsupported ...string) *Mock { return ml.NewMock(unsupported...) }
