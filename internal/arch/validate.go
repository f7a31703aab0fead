package arch

import (
	"fmt"

	"github.com/GabrielDeml/simpleaiv2-sub001/internal/ml"
)

// Violation is a single human-readable validation finding. Warnings flag
// questionable-but-compilable configurations and do not invalidate the
// architecture.
type Violation struct {
	Message string
	Warning bool
}

func (v Violation) String() string { return v.Message }

// Validate checks a layer sequence against a classification target of
// targetClasses classes. All rules are evaluated; violations are collected,
// never short-circuited, so a UI can render the full list.
func Validate(layers []Layer, targetClasses int) []Violation {
	var violations []Violation
	addError := func(format string, args ...any) {
		violations = append(violations, Violation{Message: fmt.Sprintf(format, args...)})
	}
	addWarning := func(format string, args ...any) {
		violations = append(violations, Violation{Message: fmt.Sprintf(format, args...), Warning: true})
	}

	if len(layers) == 0 || layers[0].Type() != LayerInput {
		addError("first layer must be an input layer")
	}

	if last, ok := lastLayer(layers).(*Dense); ok && targetClasses > 0 && last.Units != targetClasses {
		addError("output layer has %d units; expected %d for %d-class classification",
			last.Units, targetClasses, targetClasses)
	}

	if last := lastDense(layers); last != nil && len(layers) > 1 && last.Activation != ml.ActivationSoftmax {
		addWarning("last dense layer activation should be softmax for classification, got %s", last.Activation)
	}

	for i := 0; i+1 < len(layers); i++ {
		if layers[i].Type() == LayerDropout && layers[i+1].Type() == LayerDropout {
			addError("layers %d and %d are consecutive dropout layers", i+1, i+2)
		}
	}

	if lastDense(layers) == nil {
		addError("architecture needs at least one dense layer")
	}

	return violations
}

func lastLayer(layers []Layer) Layer {
	if len(layers) == 0 {
		return nil
	}
	return layers[len(layers)-1]
}

func lastDense(layers []Layer) *Dense {
	for i := len(layers) - 1; i >= 0; i-- {
		if d, ok := layers[i].(*Dense); ok {
			return d
		}
	}
	return nil
}
