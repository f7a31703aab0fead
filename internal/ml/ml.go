// Package ml defines the boundary to the external tensor/ML library.
//
// Everything numeric in this repository (matrix multiply, backpropagation,
// gradient descent) happens behind these interfaces. The core packages only
// translate configuration into calls against them: the dataset layer produces
// Tensors, the compiler drives a SequentialBuilder, and the resulting Model
// handle is opaque to everything but the backend that produced it.
//
// Backends are expected to be used from a single goroutine at a time. Fit is
// a blocking call; callers must serialize training runs against the same
// Model and may stop a run between epochs via StopFlag.
package ml

import (
	"context"
	"errors"
	"sync/atomic"
)

// Common errors.
var (
	// ErrUnsupportedLayer is returned (possibly wrapped) by SequentialBuilder
	// methods when the backend cannot realize a layer type. Callers may treat
	// it as non-fatal and skip the layer.
	ErrUnsupportedLayer = errors.New("layer type not supported by backend")

	// ErrReleased is returned when a released Tensor or Model is used.
	ErrReleased = errors.New("use of released handle")
)

// Backend is implemented by an external tensor/ML library.
type Backend interface {
	// Name returns the backend name, e.g. "gonum" or "mock".
	Name() string

	// NewTensor wraps a flat row-major float32 buffer in a backend tensor of
	// the given shape. The backend takes ownership of the slice; the caller
	// must Release the tensor when done, the library does not collect these
	// eagerly.
	NewTensor(data []float32, shape ...int) (Tensor, error)

	// NewSequential starts building a sequential model with the given input
	// shape (excluding the batch dimension).
	NewSequential(inputShape []int) (SequentialBuilder, error)
}

// Tensor is an opaque handle to backend-owned numeric storage.
type Tensor interface {
	// Shape returns the tensor dimensions, batch first.
	Shape() []int

	// Data returns the flat row-major contents.
	Data() []float32

	// Release frees the underlying storage. Using the tensor afterwards is
	// an error.
	Release()
}

// Activation names the activation functions the boundary understands.
type Activation string

const (
	ActivationReLU    Activation = "relu"
	ActivationSigmoid Activation = "sigmoid"
	ActivationTanh    Activation = "tanh"
	ActivationSoftmax Activation = "softmax"
	ActivationLinear  Activation = "linear"
)

// Loss names the loss functions the boundary understands.
type Loss string

const (
	LossCategoricalCrossentropy Loss = "categoricalCrossentropy"
	LossBinaryCrossentropy      Loss = "binaryCrossentropy"
	LossMeanSquaredError        Loss = "meanSquaredError"
)

// DenseSpec configures a fully connected layer.
//
// InputShape is set only on the first layer of a model; later layers infer
// their input size from the previous layer's output.
type DenseSpec struct {
	Units      int
	Activation Activation
	InputShape []int
}

// Conv2DSpec configures a 2-D convolution layer.
type Conv2DSpec struct {
	Filters    int
	KernelSize int
	Strides    int
	Activation Activation
	InputShape []int
}

// MaxPool2DSpec configures a 2-D max pooling layer.
type MaxPool2DSpec struct {
	PoolSize int
	Strides  int
}

// OptimizerConfig selects the optimizer for model compilation.
// A zero value means the backend default (adam, lr=0.001).
type OptimizerConfig struct {
	Name         string  // "adam" or "sgd"
	LearningRate float64 // 0 means backend default
}

// CompileConfig finalizes a sequential model.
type CompileConfig struct {
	Loss      Loss
	Optimizer OptimizerConfig
	Metrics   []string
}

// SequentialBuilder assembles a sequential model layer by layer.
//
// Layers are applied strictly in the order they are added. Methods return an
// error wrapping ErrUnsupportedLayer when the backend cannot realize the
// requested layer.
type SequentialBuilder interface {
	AddDense(spec DenseSpec) error
	AddDropout(rate float64) error
	AddFlatten() error
	AddConv2D(spec Conv2DSpec) error
	AddMaxPool2D(spec MaxPool2DSpec) error

	// Compile freezes the layer list and produces a trainable model.
	Compile(cfg CompileConfig) (Model, error)
}

// EpochMetrics carries per-epoch training metrics.
type EpochMetrics struct {
	Epoch    int
	Loss     float64
	Accuracy float64
	MAE      float64

	ValLoss     float64
	ValAccuracy float64
	Validated   bool
}

// FitConfig configures a training run. Zero values mean defaults
// (Epochs=10, BatchSize=32).
type FitConfig struct {
	Epochs    int
	BatchSize int

	// Optional held-out set evaluated at the end of every epoch.
	ValidationX Tensor
	ValidationY Tensor

	// OnEpochEnd, when set, is invoked after every epoch with that epoch's
	// metrics. It runs on the calling goroutine.
	OnEpochEnd func(EpochMetrics)

	// Stop, when set, is checked between epochs; once halted the run returns
	// early with the metrics collected so far. There is no finer-grained
	// cancellation inside an epoch.
	Stop *StopFlag
}

// Model is a compiled, trainable model handle.
type Model interface {
	// Fit trains on x/y and returns the metrics of each completed epoch.
	// Callers must not run two fits concurrently against the same model.
	Fit(ctx context.Context, x, y Tensor, cfg FitConfig) ([]EpochMetrics, error)

	// Predict runs a forward pass. The returned tensor is caller-owned.
	Predict(ctx context.Context, x Tensor) (Tensor, error)

	// Evaluate computes loss and metrics on x/y without training.
	Evaluate(ctx context.Context, x, y Tensor) (EpochMetrics, error)

	// ParameterCount returns the number of trainable parameters.
	ParameterCount() int64

	// Release frees backend resources held by the model.
	Release()
}

// StopFlag is a caller-visible halt request, inspected between epochs.
type StopFlag struct {
	halted atomic.Bool
}

// Halt requests that the current training run stop after the running epoch.
func (s *StopFlag) Halt() { s.halted.Store(true) }

// Halted reports whether a halt has been requested.
func (s *StopFlag) Halted() bool { return s.halted.Load() }
