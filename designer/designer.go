// Copyright 2026 SimpleAI Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package designer provides the public API for building, validating and
// compiling model architectures.
//
// An Architecture is an ordered layer list with a fixed input layer. Every
// mutation re-runs validation and the parameter estimate:
//
//	a := designer.New(784, 10)
//	a.Add(designer.NewDense(128, ml.ActivationReLU))
//	a.Add(designer.NewDense(10, ml.ActivationSoftmax))
//	result, err := designer.Compile(a, backend, designer.CompileOptions{})
package designer

import (
	"github.com/GabrielDeml/simpleaiv2-sub001/internal/arch"
	"github.com/GabrielDeml/simpleaiv2-sub001/internal/compile"
	"github.com/GabrielDeml/simpleaiv2-sub001/internal/ml"
)

// Architecture is an editable, always-validated layer list.
type Architecture = arch.Architecture

// Layer is one entry of an architecture.
type Layer = arch.Layer

// LayerType names a layer kind.
type LayerType = arch.LayerType

// Layer kinds.
const (
	LayerInput     = arch.LayerInput
	LayerDense     = arch.LayerDense
	LayerDropout   = arch.LayerDropout
	LayerConv2D    = arch.LayerConv2D
	LayerMaxPool2D = arch.LayerMaxPool2D
	LayerFlatten   = arch.LayerFlatten
)

// Concrete layer types.
type (
	Input     = arch.Input
	Dense     = arch.Dense
	Dropout   = arch.Dropout
	Conv2D    = arch.Conv2D
	MaxPool2D = arch.MaxPool2D
	Flatten   = arch.Flatten
)

// Violation is a single validation finding.
type Violation = arch.Violation

// Summary is the parameter and memory estimate of an architecture.
type Summary = arch.Summary

// LayerEstimate is the per-layer portion of a Summary.
type LayerEstimate = arch.LayerEstimate

// CompileOptions tunes compilation. The zero value selects the defaults.
type CompileOptions = compile.Options

// CompileResult is a successful compilation.
type CompileResult = compile.Result

// ValidationError reports structural violations that block compilation.
type ValidationError = compile.ValidationError

// Errors returned by architecture mutations.
var (
	ErrInputLayerFixed  = arch.ErrInputLayerFixed
	ErrPositionReserved = arch.ErrPositionReserved
	ErrLayerNotFound    = arch.ErrLayerNotFound
)

// New creates an architecture with a single input layer.
func New(inputUnits, targetClasses int) *Architecture {
	return arch.New(inputUnits, targetClasses)
}

// NewDense creates a fully connected layer.
func NewDense(units int, activation ml.Activation) *Dense {
	return arch.NewDense(units, activation)
}

// NewDropout creates a dropout layer.
func NewDropout(rate float64) *Dropout { return arch.NewDropout(rate) }

// NewConv2D creates a 2-D convolution layer.
func NewConv2D(filters, kernelSize, strides int, activation ml.Activation) *Conv2D {
	return arch.NewConv2D(filters, kernelSize, strides, activation)
}

// NewMaxPool2D creates a 2-D max pooling layer.
func NewMaxPool2D(poolSize, strides int) *MaxPool2D {
	return arch.NewMaxPool2D(poolSize, strides)
}

// NewFlatten creates a flatten layer.
func NewFlatten() *Flatten { return arch.NewFlatten() }

// Compile translates an architecture into a trainable model on the backend.
func Compile(a *Architecture, backend ml.Backend, opts CompileOptions) (*CompileResult, error) {
	return compile.Compile(a, backend, opts)
}
