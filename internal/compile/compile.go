// Package compile turns a validated architecture into a compiled, trainable
// model by walking the layer list and driving the external library's
// sequential builder.
package compile

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GabrielDeml/simpleaiv2-sub001/internal/arch"
	"github.com/GabrielDeml/simpleaiv2-sub001/internal/ml"
)

// ValidationError reports structural violations that make compilation
// impossible: a misplaced input layer or the absence of any dense layer.
// Softer validation findings are left to arch.Validate; they do not stop
// compilation.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("architecture cannot be compiled: %s", strings.Join(e.Violations, "; "))
}

// Options tunes a compilation. The zero value selects the defaults:
// adam with learning rate 0.001, and the package-level logger.
type Options struct {
	Optimizer ml.OptimizerConfig
	Logger    *slog.Logger
}

// Result is a successful compilation: the trainable model handle plus any
// warnings about layers that were skipped.
type Result struct {
	Model    ml.Model
	Warnings []string
}

// Compile translates the architecture into a model on the given backend.
//
// The leading input layer carries shape information only and is skipped;
// the first translated layer gets an explicit input shape derived from it.
// Layers the backend cannot realize are skipped with a warning so a
// partially-unsupported architecture still compiles with the supported
// subset. The loss function is chosen from the final layer's configuration.
func Compile(a *arch.Architecture, backend ml.Backend, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	layers := a.Layers()
	if err := checkStructure(layers); err != nil {
		return nil, err
	}

	input := layers[0].(*arch.Input)
	inputShape := []int{input.Units}

	builder, err := backend.NewSequential(inputShape)
	if err != nil {
		return nil, fmt.Errorf("start sequential model: %w", err)
	}

	var warnings []string
	first := true
	for i, layer := range layers[1:] {
		err := addLayer(builder, layer, first, inputShape)
		switch {
		case errors.Is(err, ml.ErrUnsupportedLayer):
			msg := fmt.Sprintf("skipping layer %d (%s): not supported by %s backend", i+1, layer.Type(), backend.Name())
			logger.Warn("unsupported layer skipped", "layer", string(layer.Type()), "position", i+1, "backend", backend.Name())
			warnings = append(warnings, msg)
			continue
		case err != nil:
			return nil, fmt.Errorf("add layer %d (%s): %w", i+1, layer.Type(), err)
		}
		first = false
	}

	cfg := ml.CompileConfig{Optimizer: opts.Optimizer}
	if cfg.Optimizer.Name == "" {
		cfg.Optimizer.Name = "adam"
	}
	if cfg.Optimizer.LearningRate == 0 {
		cfg.Optimizer.LearningRate = 0.001
	}
	cfg.Loss, cfg.Metrics = selectLoss(layers)

	model, err := builder.Compile(cfg)
	if err != nil {
		return nil, fmt.Errorf("compile model: %w", err)
	}
	return &Result{Model: model, Warnings: warnings}, nil
}

// checkStructure fails fast on the violations compilation cannot survive.
func checkStructure(layers []arch.Layer) error {
	var violations []string
	if len(layers) == 0 || layers[0].Type() != arch.LayerInput {
		violations = append(violations, "first layer must be an input layer")
	}
	hasDense := false
	for _, l := range layers {
		if l.Type() == arch.LayerDense {
			hasDense = true
			break
		}
	}
	if !hasDense {
		violations = append(violations, "architecture needs at least one dense layer")
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func addLayer(builder ml.SequentialBuilder, layer arch.Layer, first bool, inputShape []int) error {
	switch l := layer.(type) {
	case *arch.Dense:
		spec := ml.DenseSpec{Units: l.Units, Activation: l.Activation}
		if first {
			spec.InputShape = inputShape
		}
		return builder.AddDense(spec)
	case *arch.Dropout:
		return builder.AddDropout(l.Rate)
	case *arch.Flatten:
		return builder.AddFlatten()
	case *arch.Conv2D:
		spec := ml.Conv2DSpec{Filters: l.Filters, KernelSize: l.KernelSize, Strides: l.Strides, Activation: l.Activation}
		if first {
			spec.InputShape = inputShape
		}
		return builder.AddConv2D(spec)
	case *arch.MaxPool2D:
		return builder.AddMaxPool2D(ml.MaxPool2DSpec{PoolSize: l.PoolSize, Strides: l.Strides})
	default:
		return fmt.Errorf("%s: %w", layer.Type(), ml.ErrUnsupportedLayer)
	}
}

// selectLoss picks the loss and tracked metrics from the final layer's
// configuration: sigmoid with a single output unit means binary
// cross-entropy, linear output means mean squared error with MAE tracked,
// anything else is categorical cross-entropy with accuracy.
func selectLoss(layers []arch.Layer) (ml.Loss, []string) {
	if last, ok := layers[len(layers)-1].(*arch.Dense); ok {
		switch {
		case last.Activation == ml.ActivationSigmoid && last.Units == 1:
			return ml.LossBinaryCrossentropy, []string{"accuracy"}
		case last.Activation == ml.ActivationLinear:
			return ml.LossMeanSquaredError, []string{"mae"}
		}
	}
	return ml.LossCategoricalCrossentropy, []string{"accuracy"}
}
