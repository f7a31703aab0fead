package ml

import (
	"context"
	"fmt"
)

// Verify the mock satisfies the boundary.
var (
	_ Backend           = (*Mock)(nil)
	_ Tensor            = (*MockTensor)(nil)
	_ SequentialBuilder = (*MockBuilder)(nil)
	_ Model             = (*MockModel)(nil)
)

// Mock is a recording backend for tests.
//
// It performs no numeric work: builders record the layers they are given and
// fitted models fabricate monotonically improving metrics. Tests assert
// against the recorded calls via LastBuilder.
type Mock struct {
	// Unsupported lists layer kinds ("dense", "dropout", "flatten",
	// "conv2d", "maxpooling2d") the mock should reject with
	// ErrUnsupportedLayer.
	Unsupported []string

	// LastBuilder is the most recent builder handed out by NewSequential.
	LastBuilder *MockBuilder
}

// NewMock creates a recording mock backend.
func NewMock(unsupported ...string) *Mock {
	return &Mock{Unsupported: unsupported}
}

// Name returns the backend name.
func (m *Mock) Name() string { return "mock" }

// NewTensor wraps data in a MockTensor after checking the element count.
func (m *Mock) NewTensor(data []float32, shape ...int) (Tensor, error) {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(data) {
		return nil, fmt.Errorf("mock: shape %v wants %d elements, got %d", shape, n, len(data))
	}
	return &MockTensor{data: data, shape: append([]int(nil), shape...)}, nil
}

// NewSequential starts a recording builder.
func (m *Mock) NewSequential(inputShape []int) (SequentialBuilder, error) {
	b := &MockBuilder{
		backend:    m,
		InputShape: append([]int(nil), inputShape...),
	}
	m.LastBuilder = b
	return b, nil
}

func (m *Mock) supports(kind string) bool {
	for _, u := range m.Unsupported {
		if u == kind {
			return false
		}
	}
	return true
}

// MockTensor is an in-memory Tensor.
type MockTensor struct {
	data     []float32
	shape    []int
	Released bool
}

// Shape returns the tensor dimensions.
func (t *MockTensor) Shape() []int { return t.shape }

// Data returns the flat contents.
func (t *MockTensor) Data() []float32 { return t.data }

// Release marks the tensor released and drops its storage.
func (t *MockTensor) Release() {
	t.Released = true
	t.data = nil
}

// AddedLayer records a single builder call.
type AddedLayer struct {
	Kind    string // "dense", "dropout", "flatten", "conv2d", "maxpooling2d"
	Dense   DenseSpec
	Rate    float64
	Conv    Conv2DSpec
	Pool    MaxPool2DSpec
}

// MockBuilder records layers and the compile configuration.
type MockBuilder struct {
	backend    *Mock
	InputShape []int
	Layers     []AddedLayer
	Config     CompileConfig
	Compiled   bool
}

func (b *MockBuilder) add(kind string, l AddedLayer) error {
	if !b.backend.supports(kind) {
		return fmt.Errorf("mock: %s: %w", kind, ErrUnsupportedLayer)
	}
	l.Kind = kind
	b.Layers = append(b.Layers, l)
	return nil
}

// AddDense records a dense layer.
func (b *MockBuilder) AddDense(spec DenseSpec) error {
	return b.add("dense", AddedLayer{Dense: spec})
}

// AddDropout records a dropout layer.
func (b *MockBuilder) AddDropout(rate float64) error {
	return b.add("dropout", AddedLayer{Rate: rate})
}

// AddFlatten records a flatten layer.
func (b *MockBuilder) AddFlatten() error {
	return b.add("flatten", AddedLayer{})
}

// AddConv2D records a convolution layer.
func (b *MockBuilder) AddConv2D(spec Conv2DSpec) error {
	return b.add("conv2d", AddedLayer{Conv: spec})
}

// AddMaxPool2D records a pooling layer.
func (b *MockBuilder) AddMaxPool2D(spec MaxPool2DSpec) error {
	return b.add("maxpooling2d", AddedLayer{Pool: spec})
}

// Compile freezes the recording and returns a fabricated model.
func (b *MockBuilder) Compile(cfg CompileConfig) (Model, error) {
	if len(b.Layers) == 0 {
		return nil, fmt.Errorf("mock: cannot compile empty model")
	}
	b.Config = cfg
	b.Compiled = true
	return &MockModel{Builder: b}, nil
}

// MockModel fabricates plausible training metrics without computing.
type MockModel struct {
	Builder  *MockBuilder
	Released bool
	FitCalls int
}

// Fit fabricates a decreasing loss curve, honoring context and stop flag
// between epochs.
func (m *MockModel) Fit(ctx context.Context, x, y Tensor, cfg FitConfig) ([]EpochMetrics, error) {
	if m.Released {
		return nil, ErrReleased
	}
	m.FitCalls++
	epochs := cfg.Epochs
	if epochs <= 0 {
		epochs = 10
	}
	var history []EpochMetrics
	for e := 0; e < epochs; e++ {
		if err := ctx.Err(); err != nil {
			return history, err
		}
		if cfg.Stop != nil && cfg.Stop.Halted() {
			return history, nil
		}
		met := EpochMetrics{
			Epoch:    e,
			Loss:     1.0 / float64(e+1),
			Accuracy: 1.0 - 1.0/float64(e+2),
		}
		if cfg.ValidationX != nil {
			met.ValLoss = met.Loss * 1.1
			met.ValAccuracy = met.Accuracy * 0.95
			met.Validated = true
		}
		history = append(history, met)
		if cfg.OnEpochEnd != nil {
			cfg.OnEpochEnd(met)
		}
	}
	return history, nil
}

// Predict returns a uniform distribution over the final dense layer's units.
func (m *MockModel) Predict(ctx context.Context, x Tensor) (Tensor, error) {
	if m.Released {
		return nil, ErrReleased
	}
	units := m.outputUnits()
	batch := x.Shape()[0]
	data := make([]float32, batch*units)
	for i := range data {
		data[i] = 1.0 / float32(units)
	}
	return m.Builder.backend.NewTensor(data, batch, units)
}

// Evaluate fabricates evaluation metrics.
func (m *MockModel) Evaluate(ctx context.Context, x, y Tensor) (EpochMetrics, error) {
	if m.Released {
		return EpochMetrics{}, ErrReleased
	}
	return EpochMetrics{Loss: 0.5, Accuracy: 0.5}, nil
}

// ParameterCount sums dense layer parameters from the recorded specs.
func (m *MockModel) ParameterCount() int64 {
	var total int64
	prev := 1
	for _, d := range m.Builder.InputShape {
		prev *= d
	}
	for _, l := range m.Builder.Layers {
		if l.Kind != "dense" {
			continue
		}
		total += int64(prev*l.Dense.Units + l.Dense.Units)
		prev = l.Dense.Units
	}
	return total
}

// Release marks the model released.
func (m *MockModel) Release() { m.Released = true }

func (m *MockModel) outputUnits() int {
	units := 1
	for _, l := range m.Builder.Layers {
		if l.Kind == "dense" {
			units = l.Dense.Units
		}
	}
	return units
}
