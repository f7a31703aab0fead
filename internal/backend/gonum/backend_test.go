package gonum

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielDeml/simpleaiv2-sub001/internal/ml"
)

func TestNewTensor(t *testing.T) {
	b := New(1)

	tx, err := b.NewTensor([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, tx.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, tx.Data())

	_, err = b.NewTensor([]float32{1, 2, 3}, 2, 3)
	assert.Error(t, err, "element count must match shape")

	_, err = b.NewTensor(nil, 0)
	assert.Error(t, err, "dimensions must be positive")
}

func TestUnsupportedLayers(t *testing.T) {
	b := New(1)
	builder, err := b.NewSequential([]int{28, 28, 1})
	require.NoError(t, err)

	err = builder.AddConv2D(ml.Conv2DSpec{Filters: 8, KernelSize: 3, Strides: 1, Activation: ml.ActivationReLU})
	assert.ErrorIs(t, err, ml.ErrUnsupportedLayer)

	err = builder.AddMaxPool2D(ml.MaxPool2DSpec{PoolSize: 2, Strides: 2})
	assert.ErrorIs(t, err, ml.ErrUnsupportedLayer)

	// Dense and flatten still work after the rejections.
	require.NoError(t, builder.AddFlatten())
	require.NoError(t, builder.AddDense(ml.DenseSpec{Units: 10, Activation: ml.ActivationSoftmax}))
}

func TestCompileNeedsDense(t *testing.T) {
	b := New(1)
	builder, err := b.NewSequential([]int{4})
	require.NoError(t, err)
	require.NoError(t, builder.AddDropout(0.5))

	_, err = builder.Compile(ml.CompileConfig{})
	assert.Error(t, err)
}

func TestParameterCount(t *testing.T) {
	b := New(1)
	builder, err := b.NewSequential([]int{4})
	require.NoError(t, err)
	require.NoError(t, builder.AddDense(ml.DenseSpec{Units: 8, Activation: ml.ActivationReLU}))
	require.NoError(t, builder.AddDropout(0.2))
	require.NoError(t, builder.AddDense(ml.DenseSpec{Units: 3, Activation: ml.ActivationSoftmax}))

	model, err := builder.Compile(ml.CompileConfig{})
	require.NoError(t, err)
	defer model.Release()

	// 4*8+8 for the hidden layer, 8*3+3 for the output layer.
	assert.Equal(t, int64(67), model.ParameterCount())
}

// twoClusters builds a linearly separable two-class problem with one-hot
// labels.
func twoClusters(n int) (x, y []float32) {
	x = make([]float32, 0, n*2)
	y = make([]float32, 0, n*2)
	for i := 0; i < n; i++ {
		jitter := float32(i%10) * 0.01
		if i%2 == 0 {
			x = append(x, 0.1+jitter, 0.2+jitter)
			y = append(y, 1, 0)
		} else {
			x = append(x, 0.8+jitter, 0.9-jitter)
			y = append(y, 0, 1)
		}
	}
	return x, y
}

func classifierModel(t *testing.T, b *Backend) ml.Model {
	t.Helper()
	builder, err := b.NewSequential([]int{2})
	require.NoError(t, err)
	require.NoError(t, builder.AddDense(ml.DenseSpec{Units: 8, Activation: ml.ActivationReLU}))
	require.NoError(t, builder.AddDense(ml.DenseSpec{Units: 2, Activation: ml.ActivationSoftmax}))
	model, err := builder.Compile(ml.CompileConfig{
		Loss:      ml.LossCategoricalCrossentropy,
		Optimizer: ml.OptimizerConfig{Name: "adam", LearningRate: 0.01},
	})
	require.NoError(t, err)
	return model
}

func TestFitReducesLoss(t *testing.T) {
	b := New(7)
	model := classifierModel(t, b)
	defer model.Release()

	xs, ys := twoClusters(100)
	x, err := b.NewTensor(xs, 100, 2)
	require.NoError(t, err)
	y, err := b.NewTensor(ys, 100, 2)
	require.NoError(t, err)

	history, err := model.Fit(context.Background(), x, y, ml.FitConfig{Epochs: 30, BatchSize: 16})
	require.NoError(t, err)
	require.Len(t, history, 30)

	assert.Less(t, history[29].Loss, history[0].Loss)
	assert.Equal(t, 0, history[0].Epoch)
	assert.Equal(t, 29, history[29].Epoch)
}

func TestFitValidationMetrics(t *testing.T) {
	b := New(7)
	model := classifierModel(t, b)
	defer model.Release()

	xs, ys := twoClusters(80)
	x, err := b.NewTensor(xs[:120], 60, 2)
	require.NoError(t, err)
	y, err := b.NewTensor(ys[:120], 60, 2)
	require.NoError(t, err)
	vx, err := b.NewTensor(xs[120:], 20, 2)
	require.NoError(t, err)
	vy, err := b.NewTensor(ys[120:], 20, 2)
	require.NoError(t, err)

	var callbacks int
	history, err := model.Fit(context.Background(), x, y, ml.FitConfig{
		Epochs:      5,
		BatchSize:   16,
		ValidationX: vx,
		ValidationY: vy,
		OnEpochEnd:  func(ml.EpochMetrics) { callbacks++ },
	})
	require.NoError(t, err)
	require.Len(t, history, 5)
	assert.Equal(t, 5, callbacks)
	for _, met := range history {
		assert.True(t, met.Validated)
		assert.Greater(t, met.ValLoss, 0.0)
	}
}

func TestFitStopFlag(t *testing.T) {
	b := New(7)
	model := classifierModel(t, b)
	defer model.Release()

	xs, ys := twoClusters(20)
	x, err := b.NewTensor(xs, 20, 2)
	require.NoError(t, err)
	y, err := b.NewTensor(ys, 20, 2)
	require.NoError(t, err)

	var stop ml.StopFlag
	stop.Halt()
	history, err := model.Fit(context.Background(), x, y, ml.FitConfig{Epochs: 10, Stop: &stop})
	require.NoError(t, err)
	assert.Empty(t, history, "a pre-halted flag stops before the first epoch")
}

func TestFitContextCancel(t *testing.T) {
	b := New(7)
	model := classifierModel(t, b)
	defer model.Release()

	xs, ys := twoClusters(20)
	x, err := b.NewTensor(xs, 20, 2)
	require.NoError(t, err)
	y, err := b.NewTensor(ys, 20, 2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = model.Fit(ctx, x, y, ml.FitConfig{Epochs: 10})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPredictShape(t *testing.T) {
	b := New(7)
	model := classifierModel(t, b)
	defer model.Release()

	x, err := b.NewTensor([]float32{0.1, 0.2, 0.8, 0.9, 0.5, 0.5}, 3, 2)
	require.NoError(t, err)

	out, err := model.Predict(context.Background(), x)
	require.NoError(t, err)
	defer out.Release()

	assert.Equal(t, []int{3, 2}, out.Shape())
	data := out.Data()
	for i := 0; i < 3; i++ {
		sum := data[i*2] + data[i*2+1]
		assert.InDelta(t, 1.0, sum, 1e-5, "softmax rows sum to one")
	}
}

func TestRegressionLoss(t *testing.T) {
	b := New(7)
	builder, err := b.NewSequential([]int{1})
	require.NoError(t, err)
	require.NoError(t, builder.AddDense(ml.DenseSpec{Units: 1, Activation: ml.ActivationLinear}))
	model, err := builder.Compile(ml.CompileConfig{
		Loss:      ml.LossMeanSquaredError,
		Optimizer: ml.OptimizerConfig{Name: "sgd", LearningRate: 0.1},
	})
	require.NoError(t, err)
	defer model.Release()

	// y = 2x, exactly representable by a single linear unit.
	xs := make([]float32, 50)
	ys := make([]float32, 50)
	for i := range xs {
		xs[i] = float32(i) / 50
		ys[i] = 2 * xs[i]
	}
	x, err := b.NewTensor(xs, 50, 1)
	require.NoError(t, err)
	y, err := b.NewTensor(ys, 50, 1)
	require.NoError(t, err)

	history, err := model.Fit(context.Background(), x, y, ml.FitConfig{Epochs: 50, BatchSize: 10})
	require.NoError(t, err)
	assert.Less(t, history[49].Loss, history[0].Loss)
	assert.Greater(t, history[0].MAE, 0.0)
}

func TestSeededTrainingIsDeterministic(t *testing.T) {
	run := func() []ml.EpochMetrics {
		b := New(11)
		model := classifierModel(t, b)
		defer model.Release()
		xs, ys := twoClusters(40)
		x, err := b.NewTensor(xs, 40, 2)
		require.NoError(t, err)
		y, err := b.NewTensor(ys, 40, 2)
		require.NoError(t, err)
		history, err := model.Fit(context.Background(), x, y, ml.FitConfig{Epochs: 3, BatchSize: 8})
		require.NoError(t, err)
		return history
	}

	first, second := run(), run()
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Loss, second[i].Loss)
	}
}

func TestReleasedModel(t *testing.T) {
	b := New(7)
	model := classifierModel(t, b)
	model.Release()

	x, err := b.NewTensor([]float32{0.1, 0.2}, 1, 2)
	require.NoError(t, err)

	_, err = model.Fit(context.Background(), x, x, ml.FitConfig{})
	assert.ErrorIs(t, err, ml.ErrReleased)
	_, err = model.Predict(context.Background(), x)
	assert.ErrorIs(t, err, ml.ErrReleased)
}
