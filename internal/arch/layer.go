// Package arch holds the designer's in-memory representation of a candidate
// network: an ordered list of layer configurations, mutated through guarded
// operations, re-validated after every change, with a derived
// parameter/memory summary.
package arch

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/GabrielDeml/simpleaiv2-sub001/internal/ml"
)

// LayerType tags the layer variants.
type LayerType string

const (
	LayerInput     LayerType = "input"
	LayerDense     LayerType = "dense"
	LayerDropout   LayerType = "dropout"
	LayerConv2D    LayerType = "conv2d"
	LayerMaxPool2D LayerType = "maxpooling2d"
	LayerFlatten   LayerType = "flatten"
)

// MaxDropoutRate bounds the configurable dropout probability.
const MaxDropoutRate = 0.8

// Layer is one element of an architecture. Each variant carries only the
// parameters relevant to its type. The interface is sealed: variants live in
// this package.
type Layer interface {
	// ID returns the layer's unique id.
	ID() string
	// Type returns the variant tag.
	Type() LayerType

	setID(id string)
	validateParams() error
}

type layerID struct {
	id string
}

func newLayerID() layerID         { return layerID{id: uuid.NewString()} }
func (l *layerID) ID() string     { return l.id }
func (l *layerID) setID(id string) { l.id = id }

// Input declares the model's input width. Exactly one input layer exists,
// always at position 0; it carries shape information only.
type Input struct {
	layerID
	Units int
}

// NewInput creates an input layer of the given width.
func NewInput(units int) *Input {
	return &Input{layerID: newLayerID(), Units: units}
}

// Type returns LayerInput.
func (l *Input) Type() LayerType { return LayerInput }

func (l *Input) validateParams() error {
	if l.Units <= 0 {
		return fmt.Errorf("input layer units must be positive, got %d", l.Units)
	}
	return nil
}

// Dense is a fully connected layer.
type Dense struct {
	layerID
	Units      int
	Activation ml.Activation
}

// NewDense creates a dense layer.
func NewDense(units int, activation ml.Activation) *Dense {
	return &Dense{layerID: newLayerID(), Units: units, Activation: activation}
}

// Type returns LayerDense.
func (l *Dense) Type() LayerType { return LayerDense }

func (l *Dense) validateParams() error {
	if l.Units <= 0 {
		return fmt.Errorf("dense layer units must be positive, got %d", l.Units)
	}
	switch l.Activation {
	case ml.ActivationReLU, ml.ActivationSigmoid, ml.ActivationTanh,
		ml.ActivationSoftmax, ml.ActivationLinear:
		return nil
	default:
		return fmt.Errorf("unknown activation %q", l.Activation)
	}
}

// Dropout randomly zeroes activations during training.
type Dropout struct {
	layerID
	Rate float64
}

// NewDropout creates a dropout layer.
func NewDropout(rate float64) *Dropout {
	return &Dropout{layerID: newLayerID(), Rate: rate}
}

// Type returns LayerDropout.
func (l *Dropout) Type() LayerType { return LayerDropout }

func (l *Dropout) validateParams() error {
	if l.Rate < 0 || l.Rate > MaxDropoutRate {
		return fmt.Errorf("dropout rate must be in [0, %v], got %v", MaxDropoutRate, l.Rate)
	}
	return nil
}

// Conv2D is a 2-D convolution layer (designer variant).
type Conv2D struct {
	layerID
	Filters    int
	KernelSize int
	Strides    int
	Activation ml.Activation
}

// NewConv2D creates a convolution layer.
func NewConv2D(filters, kernelSize, strides int, activation ml.Activation) *Conv2D {
	return &Conv2D{layerID: newLayerID(), Filters: filters, KernelSize: kernelSize, Strides: strides, Activation: activation}
}

// Type returns LayerConv2D.
func (l *Conv2D) Type() LayerType { return LayerConv2D }

func (l *Conv2D) validateParams() error {
	if l.Filters <= 0 {
		return fmt.Errorf("conv2d filters must be positive, got %d", l.Filters)
	}
	if l.KernelSize <= 0 {
		return fmt.Errorf("conv2d kernel size must be positive, got %d", l.KernelSize)
	}
	if l.Strides <= 0 {
		return fmt.Errorf("conv2d strides must be positive, got %d", l.Strides)
	}
	return nil
}

// MaxPool2D is a 2-D max pooling layer (designer variant).
type MaxPool2D struct {
	layerID
	PoolSize int
	Strides  int
}

// NewMaxPool2D creates a pooling layer.
func NewMaxPool2D(poolSize, strides int) *MaxPool2D {
	return &MaxPool2D{layerID: newLayerID(), PoolSize: poolSize, Strides: strides}
}

// Type returns LayerMaxPool2D.
func (l *MaxPool2D) Type() LayerType { return LayerMaxPool2D }

func (l *MaxPool2D) validateParams() error {
	if l.PoolSize <= 0 {
		return fmt.Errorf("maxpooling2d pool size must be positive, got %d", l.PoolSize)
	}
	if l.Strides <= 0 {
		return fmt.Errorf("maxpooling2d strides must be positive, got %d", l.Strides)
	}
	return nil
}

// Flatten collapses spatial dimensions (designer variant).
type Flatten struct {
	layerID
}

// NewFlatten creates a flatten layer.
func NewFlatten() *Flatten { return &Flatten{layerID: newLayerID()} }

// Type returns LayerFlatten.
func (l *Flatten) Type() LayerType { return LayerFlatten }

func (l *Flatten) validateParams() error { return nil }
