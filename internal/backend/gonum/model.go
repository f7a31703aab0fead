package gonum

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/GabrielDeml/simpleaiv2-sub001/internal/ml"
)

const (
	defaultEpochs    = 10
	defaultBatchSize = 32
	defaultLearnRate = 0.001

	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8
)

type builder struct {
	backend    *Backend
	inputUnits int
	rng        *rand.Rand
	layers     []*layer
	compiled   bool
}

var _ ml.SequentialBuilder = (*builder)(nil)

// layer is one step of the network. Dense layers carry weights; dropout
// layers carry only a rate and are active during training.
type layer struct {
	kind string // "dense" or "dropout"

	// dense
	in, out    int
	activation ml.Activation
	w          *mat.Dense    // in x out
	bias       *mat.VecDense // out

	// dropout
	rate float64
}

func (b *builder) lastUnits() int {
	for i := len(b.layers) - 1; i >= 0; i-- {
		if b.layers[i].kind == "dense" {
			return b.layers[i].out
		}
	}
	return b.inputUnits
}

func (b *builder) AddDense(spec ml.DenseSpec) error {
	if spec.Units <= 0 {
		return fmt.Errorf("gonum: dense layer needs positive units, got %d", spec.Units)
	}
	switch spec.Activation {
	case ml.ActivationReLU, ml.ActivationSigmoid, ml.ActivationTanh, ml.ActivationSoftmax, ml.ActivationLinear:
	default:
		return fmt.Errorf("gonum: unknown activation %q", spec.Activation)
	}
	in := b.lastUnits()
	l := &layer{kind: "dense", in: in, out: spec.Units, activation: spec.Activation}
	l.w = glorotDense(in, spec.Units, b.rng)
	l.bias = mat.NewVecDense(spec.Units, nil)
	b.layers = append(b.layers, l)
	return nil
}

func (b *builder) AddDropout(rate float64) error {
	if rate < 0 || rate >= 1 {
		return fmt.Errorf("gonum: dropout rate must be in [0, 1), got %v", rate)
	}
	b.layers = append(b.layers, &layer{kind: "dropout", rate: rate})
	return nil
}

// AddFlatten is a no-op: inputs are flattened to one row per example on the
// way in, so there is nothing left to flatten.
func (b *builder) AddFlatten() error { return nil }

func (b *builder) AddConv2D(spec ml.Conv2DSpec) error {
	return fmt.Errorf("gonum: conv2d: %w", ml.ErrUnsupportedLayer)
}

func (b *builder) AddMaxPool2D(spec ml.MaxPool2DSpec) error {
	return fmt.Errorf("gonum: maxpooling2d: %w", ml.ErrUnsupportedLayer)
}

func (b *builder) Compile(cfg ml.CompileConfig) (ml.Model, error) {
	if b.compiled {
		return nil, fmt.Errorf("gonum: builder already compiled")
	}
	hasDense := false
	for _, l := range b.layers {
		if l.kind == "dense" {
			hasDense = true
		}
	}
	if !hasDense {
		return nil, fmt.Errorf("gonum: model has no dense layers")
	}
	switch cfg.Loss {
	case "":
		cfg.Loss = ml.LossCategoricalCrossentropy
	case ml.LossCategoricalCrossentropy, ml.LossBinaryCrossentropy, ml.LossMeanSquaredError:
	default:
		return nil, fmt.Errorf("gonum: unknown loss %q", cfg.Loss)
	}
	switch cfg.Optimizer.Name {
	case "":
		cfg.Optimizer.Name = "adam"
	case "adam", "sgd":
	default:
		return nil, fmt.Errorf("gonum: unknown optimizer %q", cfg.Optimizer.Name)
	}
	if cfg.Optimizer.LearningRate == 0 {
		cfg.Optimizer.LearningRate = defaultLearnRate
	}
	b.compiled = true

	m := &model{
		backend:    b.backend,
		layers:     b.layers,
		inputUnits: b.inputUnits,
		cfg:        cfg,
		rng:        b.rng,
	}
	for _, l := range m.layers {
		if l.kind == "dense" {
			m.states = append(m.states, newAdamState(l.in, l.out))
		} else {
			m.states = append(m.states, nil)
		}
	}
	return m, nil
}

// glorotDense initializes an in x out weight matrix with Glorot uniform
// scaling.
func glorotDense(in, out int, rng *rand.Rand) *mat.Dense {
	limit := math.Sqrt(6.0 / float64(in+out))
	data := make([]float64, in*out)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * limit
	}
	return mat.NewDense(in, out, data)
}

// adamState holds first and second moment estimates for one dense layer.
type adamState struct {
	mw, vw *mat.Dense
	mb, vb *mat.VecDense
}

func newAdamState(in, out int) *adamState {
	return &adamState{
		mw: mat.NewDense(in, out, nil),
		vw: mat.NewDense(in, out, nil),
		mb: mat.NewVecDense(out, nil),
		vb: mat.NewVecDense(out, nil),
	}
}

type model struct {
	backend    *Backend
	layers     []*layer
	states     []*adamState
	inputUnits int
	cfg        ml.CompileConfig
	rng        *rand.Rand
	step       int // adam update counter
	released   bool
}

var _ ml.Model = (*model)(nil)

func (m *model) ParameterCount() int64 {
	var total int64
	for _, l := range m.layers {
		if l.kind == "dense" {
			total += int64(l.in*l.out + l.out)
		}
	}
	return total
}

func (m *model) Release() {
	m.released = true
	m.layers = nil
	m.states = nil
}

func (m *model) outputUnits() int {
	for i := len(m.layers) - 1; i >= 0; i-- {
		if m.layers[i].kind == "dense" {
			return m.layers[i].out
		}
	}
	return m.inputUnits
}

// Fit runs mini-batch gradient descent over the whole of x/y for each epoch.
func (m *model) Fit(ctx context.Context, x, y ml.Tensor, cfg ml.FitConfig) ([]ml.EpochMetrics, error) {
	if m.released {
		return nil, ml.ErrReleased
	}
	xm, ym, err := m.trainingPair(x, y)
	if err != nil {
		return nil, err
	}
	epochs := cfg.Epochs
	if epochs <= 0 {
		epochs = defaultEpochs
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	n, _ := xm.Dims()

	var history []ml.EpochMetrics
	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return history, err
		}
		if cfg.Stop != nil && cfg.Stop.Halted() {
			return history, nil
		}

		order := m.rng.Perm(n)
		var lossSum, accSum, maeSum float64
		for start := 0; start < n; start += batchSize {
			end := start + batchSize
			if end > n {
				end = n
			}
			bx := gatherRows(xm, order[start:end])
			by := gatherRows(ym, order[start:end])
			loss, acc, mae := m.trainBatch(bx, by)
			weight := float64(end - start)
			lossSum += loss * weight
			accSum += acc * weight
			maeSum += mae * weight
		}

		met := ml.EpochMetrics{
			Epoch:    epoch,
			Loss:     lossSum / float64(n),
			Accuracy: accSum / float64(n),
			MAE:      maeSum / float64(n),
		}
		if cfg.ValidationX != nil && cfg.ValidationY != nil {
			val, err := m.Evaluate(ctx, cfg.ValidationX, cfg.ValidationY)
			if err != nil {
				return history, fmt.Errorf("validation: %w", err)
			}
			met.ValLoss = val.Loss
			met.ValAccuracy = val.Accuracy
			met.Validated = true
		}
		history = append(history, met)
		if cfg.OnEpochEnd != nil {
			cfg.OnEpochEnd(met)
		}
	}
	return history, nil
}

// Predict runs a forward pass with dropout disabled.
func (m *model) Predict(ctx context.Context, x ml.Tensor) (ml.Tensor, error) {
	if m.released {
		return nil, ml.ErrReleased
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	xm, err := m.inputMatrix(x)
	if err != nil {
		return nil, err
	}
	out := m.forward(xm, false, nil)
	n, units := out.Dims()
	data := make([]float32, n*units)
	raw := out.RawMatrix()
	for i := 0; i < n; i++ {
		for j := 0; j < units; j++ {
			data[i*units+j] = float32(raw.Data[i*raw.Stride+j])
		}
	}
	return m.backend.NewTensor(data, n, units)
}

// Evaluate computes loss and metrics over x/y without updating weights.
func (m *model) Evaluate(ctx context.Context, x, y ml.Tensor) (ml.EpochMetrics, error) {
	if m.released {
		return ml.EpochMetrics{}, ml.ErrReleased
	}
	if err := ctx.Err(); err != nil {
		return ml.EpochMetrics{}, err
	}
	xm, ym, err := m.trainingPair(x, y)
	if err != nil {
		return ml.EpochMetrics{}, err
	}
	out := m.forward(xm, false, nil)
	loss := m.loss(out, ym)
	acc, mae := m.metrics(out, ym)
	return ml.EpochMetrics{Loss: loss, Accuracy: acc, MAE: mae}, nil
}

func (m *model) inputMatrix(x ml.Tensor) (*mat.Dense, error) {
	t, ok := x.(*tensor)
	if !ok {
		return nil, fmt.Errorf("gonum: tensor was produced by another backend")
	}
	n, rowSize, err := t.rows()
	if err != nil {
		return nil, err
	}
	if rowSize != m.inputUnits {
		return nil, fmt.Errorf("gonum: input has %d features per example, model wants %d", rowSize, m.inputUnits)
	}
	return toDense(t.data, n, rowSize), nil
}

func (m *model) trainingPair(x, y ml.Tensor) (xm, ym *mat.Dense, err error) {
	xm, err = m.inputMatrix(x)
	if err != nil {
		return nil, nil, err
	}
	yt, ok := y.(*tensor)
	if !ok {
		return nil, nil, fmt.Errorf("gonum: tensor was produced by another backend")
	}
	yn, ySize, err := yt.rows()
	if err != nil {
		return nil, nil, err
	}
	xn, _ := xm.Dims()
	if yn != xn {
		return nil, nil, fmt.Errorf("gonum: x has %d examples but y has %d", xn, yn)
	}
	if ySize != m.outputUnits() {
		return nil, nil, fmt.Errorf("gonum: labels have %d values per example, model outputs %d", ySize, m.outputUnits())
	}
	return xm, toDense(yt.data, yn, ySize), nil
}

// forward propagates a batch through the network. With training set, dropout
// layers apply inverted-dropout masks and, when trace is non-nil, the
// pre-activations and activations of every layer are recorded for backprop.
func (m *model) forward(input *mat.Dense, training bool, trace *forwardTrace) *mat.Dense {
	a := input
	if trace != nil {
		trace.activations = append(trace.activations, a)
	}
	for _, l := range m.layers {
		switch l.kind {
		case "dense":
			rows, _ := a.Dims()
			z := mat.NewDense(rows, l.out, nil)
			z.Mul(a, l.w)
			addRowwise(z, l.bias)
			out := applyActivation(z, l.activation)
			if trace != nil {
				trace.preacts = append(trace.preacts, z)
				trace.activations = append(trace.activations, out)
				trace.masks = append(trace.masks, nil)
			}
			a = out
		case "dropout":
			if !training || l.rate == 0 {
				if trace != nil {
					trace.preacts = append(trace.preacts, nil)
					trace.activations = append(trace.activations, a)
					trace.masks = append(trace.masks, nil)
				}
				continue
			}
			mask := m.dropoutMask(a, l.rate)
			out := mat.DenseCopyOf(a)
			out.MulElem(out, mask)
			if trace != nil {
				trace.preacts = append(trace.preacts, nil)
				trace.activations = append(trace.activations, out)
				trace.masks = append(trace.masks, mask)
			}
			a = out
		}
	}
	return a
}

type forwardTrace struct {
	// activations[0] is the input; activations[i+1] is the output of
	// layers[i]. preacts[i] and masks[i] are per-layer, nil where not
	// applicable.
	activations []*mat.Dense
	preacts     []*mat.Dense
	masks       []*mat.Dense
}

func (m *model) dropoutMask(a *mat.Dense, rate float64) *mat.Dense {
	rows, cols := a.Dims()
	keep := 1 - rate
	mask := mat.NewDense(rows, cols, nil)
	raw := mask.RawMatrix()
	for i := range raw.Data {
		if m.rng.Float64() < keep {
			raw.Data[i] = 1 / keep
		}
	}
	return mask
}

// trainBatch performs one forward/backward pass and weight update, returning
// the batch's mean loss, accuracy and mean absolute error.
func (m *model) trainBatch(bx, by *mat.Dense) (loss, acc, mae float64) {
	trace := &forwardTrace{}
	out := m.forward(bx, true, trace)
	loss = m.loss(out, by)
	acc, mae = m.metrics(out, by)

	batch, _ := bx.Dims()
	delta := m.outputDelta(trace, out, by, batch)
	m.step++

	// delta starts as dLoss/dZ of the topmost dense layer; below that it is
	// dLoss/dA until the next dense layer folds in its activation gradient.
	isPreact := true
	for i := len(m.layers) - 1; i >= 0; i-- {
		l := m.layers[i]
		switch l.kind {
		case "dropout":
			if mask := trace.masks[i]; mask != nil {
				delta.MulElem(delta, mask)
			}
		case "dense":
			if !isPreact {
				mulActivationGrad(delta, trace.preacts[i], trace.activations[i+1], l.activation)
			}
			prev := trace.activations[i]
			dw := mat.NewDense(l.in, l.out, nil)
			dw.Mul(prev.T(), delta)
			db := columnSums(delta)

			if i > 0 {
				next := mat.NewDense(batch, l.in, nil)
				next.Mul(delta, l.w.T())
				delta = next
				isPreact = false
			}
			m.update(i, dw, db)
		}
	}
	return loss, acc, mae
}

// outputDelta computes dLoss/dZ at the topmost dense layer. The softmax and
// sigmoid cross-entropy combinations fuse to (out - y) / batch; mean squared
// error folds the output activation's gradient in explicitly.
func (m *model) outputDelta(trace *forwardTrace, out, by *mat.Dense, batch int) *mat.Dense {
	rows, cols := out.Dims()
	delta := mat.NewDense(rows, cols, nil)
	delta.Sub(out, by)

	switch m.cfg.Loss {
	case ml.LossMeanSquaredError:
		delta.Scale(2/float64(batch*cols), delta)
		if i := m.lastDenseIndex(); i >= 0 && m.layers[i].activation != ml.ActivationLinear {
			mulActivationGrad(delta, trace.preacts[i], trace.activations[i+1], m.layers[i].activation)
		}
	default:
		delta.Scale(1/float64(batch), delta)
	}
	return delta
}

func (m *model) lastDenseIndex() int {
	for i := len(m.layers) - 1; i >= 0; i-- {
		if m.layers[i].kind == "dense" {
			return i
		}
	}
	return -1
}

func (m *model) update(i int, dw *mat.Dense, db *mat.VecDense) {
	l := m.layers[i]
	lr := m.cfg.Optimizer.LearningRate
	if m.cfg.Optimizer.Name == "sgd" {
		dw.Scale(lr, dw)
		l.w.Sub(l.w, dw)
		db.ScaleVec(lr, db)
		l.bias.SubVec(l.bias, db)
		return
	}
	s := m.states[i]
	adamStep(l.w.RawMatrix().Data, dw.RawMatrix().Data, s.mw.RawMatrix().Data, s.vw.RawMatrix().Data, lr, m.step)
	adamStep(l.bias.RawVector().Data, db.RawVector().Data, s.mb.RawVector().Data, s.vb.RawVector().Data, lr, m.step)
}

// adamStep applies one Adam update in place over flat parameter storage.
func adamStep(w, g, mo, ve []float64, lr float64, t int) {
	c1 := 1 - math.Pow(adamBeta1, float64(t))
	c2 := 1 - math.Pow(adamBeta2, float64(t))
	for i := range w {
		mo[i] = adamBeta1*mo[i] + (1-adamBeta1)*g[i]
		ve[i] = adamBeta2*ve[i] + (1-adamBeta2)*g[i]*g[i]
		mhat := mo[i] / c1
		vhat := ve[i] / c2
		w[i] -= lr * mhat / (math.Sqrt(vhat) + adamEpsilon)
	}
}

// loss computes the mean loss over a batch of predictions.
func (m *model) loss(out, by *mat.Dense) float64 {
	rows, cols := out.Dims()
	var sum float64
	switch m.cfg.Loss {
	case ml.LossBinaryCrossentropy:
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				p := clampProb(out.At(i, j))
				y := by.At(i, j)
				sum += -(y*math.Log(p) + (1-y)*math.Log(1-p))
			}
		}
		return sum / float64(rows*cols)
	case ml.LossMeanSquaredError:
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				d := out.At(i, j) - by.At(i, j)
				sum += d * d
			}
		}
		return sum / float64(rows*cols)
	default: // categorical cross-entropy
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				if y := by.At(i, j); y > 0 {
					sum += -y * math.Log(clampProb(out.At(i, j)))
				}
			}
		}
		return sum / float64(rows)
	}
}

// metrics computes accuracy (argmax match, or thresholded for single-unit
// sigmoid output) and mean absolute error.
func (m *model) metrics(out, by *mat.Dense) (acc, mae float64) {
	rows, cols := out.Dims()
	correct := 0
	var absSum float64
	for i := 0; i < rows; i++ {
		if cols == 1 {
			p, y := out.At(i, 0), by.At(i, 0)
			if (p >= 0.5) == (y >= 0.5) {
				correct++
			}
			absSum += math.Abs(p - y)
			continue
		}
		pi, yi := 0, 0
		for j := 1; j < cols; j++ {
			if out.At(i, j) > out.At(i, pi) {
				pi = j
			}
			if by.At(i, j) > by.At(i, yi) {
				yi = j
			}
		}
		if pi == yi {
			correct++
		}
		for j := 0; j < cols; j++ {
			absSum += math.Abs(out.At(i, j) - by.At(i, j))
		}
	}
	return float64(correct) / float64(rows), absSum / float64(rows*cols)
}

func clampProb(p float64) float64 {
	const eps = 1e-7
	return math.Min(math.Max(p, eps), 1-eps)
}
