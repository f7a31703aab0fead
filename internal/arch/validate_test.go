package arch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielDeml/simpleaiv2-sub001/internal/ml"
)

func mustAdd(t *testing.T, a *Architecture, layers ...Layer) {
	t.Helper()
	for _, l := range layers {
		require.NoError(t, a.Add(l))
	}
}

func errorCount(violations []Violation) int {
	n := 0
	for _, v := range violations {
		if !v.Warning {
			n++
		}
	}
	return n
}

func TestValidate_ValidClassifier(t *testing.T) {
	a := New(784, 10)
	mustAdd(t, a,
		NewDense(128, ml.ActivationReLU),
		NewDense(10, ml.ActivationSoftmax),
	)

	assert.True(t, a.Valid())
	assert.Empty(t, a.Violations())
}

func TestValidate_OutputUnitsMismatch(t *testing.T) {
	a := New(784, 10)
	mustAdd(t, a,
		NewDense(128, ml.ActivationReLU),
		NewDense(5, ml.ActivationSoftmax),
	)

	assert.False(t, a.Valid())
	violations := a.Violations()
	require.Equal(t, 1, errorCount(violations))
	assert.Contains(t, violations[0].Message, "5 units")
	assert.Contains(t, violations[0].Message, "10")
}

func TestValidate_SoftmaxWarningDoesNotInvalidate(t *testing.T) {
	a := New(784, 10)
	mustAdd(t, a,
		NewDense(128, ml.ActivationReLU),
		NewDense(10, ml.ActivationReLU),
	)

	assert.True(t, a.Valid(), "softmax rule is warning-severity")
	violations := a.Violations()
	require.Len(t, violations, 1)
	assert.True(t, violations[0].Warning)
	assert.Contains(t, violations[0].Message, "softmax")
}

func TestValidate_AdjacentDropout(t *testing.T) {
	a := New(10, 0)
	mustAdd(t, a, NewDropout(0.2), NewDropout(0.3))

	var dropoutViolations []Violation
	for _, v := range a.Violations() {
		if strings.Contains(v.Message, "dropout") {
			dropoutViolations = append(dropoutViolations, v)
		}
	}
	require.Len(t, dropoutViolations, 1, "exactly one consecutive-dropout violation")
	assert.Contains(t, dropoutViolations[0].Message, "consecutive")
}

func TestValidate_NeedsDenseLayer(t *testing.T) {
	a := New(10, 2)
	assert.False(t, a.Valid())

	found := false
	for _, v := range a.Violations() {
		if strings.Contains(v.Message, "dense") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	// Misordered input plus double dropout plus no dense layer: all three
	// must be reported together.
	layers := []Layer{
		NewDropout(0.1),
		NewDropout(0.2),
		NewInput(10),
	}
	violations := Validate(layers, 4)
	assert.GreaterOrEqual(t, errorCount(violations), 3)
}

func TestValidate_TargetClassesFollowDataset(t *testing.T) {
	a := New(784, 10)
	mustAdd(t, a,
		NewDense(128, ml.ActivationReLU),
		NewDense(4, ml.ActivationSoftmax),
	)
	assert.False(t, a.Valid())

	a.SetTargetClasses(4)
	assert.True(t, a.Valid())
}
