// Copyright 2026 SimpleAI Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gonum provides the reference CPU backend, built on gonum's dense
// matrix routines.
//
// It supports fully connected networks: dense, dropout and flatten layers.
// Convolution and pooling layers report ml.ErrUnsupportedLayer and are
// skipped by the compiler.
package gonum

import (
	internalgonum "github.com/GabrielDeml/simpleaiv2-sub001/internal/backend/gonum"
	"github.com/GabrielDeml/simpleaiv2-sub001/ml"
)

// Backend builds and trains models with gonum.
type Backend = internalgonum.Backend

// Compile-time check that Backend implements ml.Backend.
var _ ml.Backend = (*Backend)(nil)

// New creates a backend seeded from the given value. Two backends with the
// same seed train identically on the same data.
//
// Example:
//
//	backend := gonum.New(42)
//	tensors, _ := ds.LoadTensors(ctx, backend)
func New(seed int64) *Backend {
	return internalgonum.New(seed)
}
