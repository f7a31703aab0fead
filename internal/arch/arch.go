package arch

import (
	"errors"
	"fmt"
)

// Mutation errors.
var (
	// ErrInputLayerFixed rejects deleting the input layer or moving it away
	// from position 0.
	ErrInputLayerFixed = errors.New("input layer is fixed at position 0")

	// ErrPositionReserved rejects moving a non-input layer into position 0.
	ErrPositionReserved = errors.New("position 0 is reserved for the input layer")

	// ErrLayerNotFound is returned for mutations referencing an unknown id.
	ErrLayerNotFound = errors.New("no layer with that id")
)

// Architecture is the ordered layer sequence describing a candidate network.
//
// It is created with a single default input layer and mutated only through
// Add, Update, Delete and Move; every mutation re-validates the sequence and
// recomputes the parameter/memory summary. Consumers (the compiler, the UI)
// read it; they never mutate it.
type Architecture struct {
	layers        []Layer
	targetClasses int

	violations []Violation
	summary    Summary
}

// New creates an architecture with a single input layer of inputUnits and a
// classification target of targetClasses output classes.
func New(inputUnits, targetClasses int) *Architecture {
	a := &Architecture{
		layers:        []Layer{NewInput(inputUnits)},
		targetClasses: targetClasses,
	}
	a.refresh()
	return a
}

// Layers returns a copy of the layer sequence.
func (a *Architecture) Layers() []Layer {
	return append([]Layer(nil), a.layers...)
}

// Len returns the number of layers, input included.
func (a *Architecture) Len() int { return len(a.layers) }

// TargetClasses returns the class count validated against.
func (a *Architecture) TargetClasses() int { return a.targetClasses }

// SetTargetClasses updates the classification target (e.g. after switching
// datasets) and re-validates.
func (a *Architecture) SetTargetClasses(n int) {
	a.targetClasses = n
	a.refresh()
}

// Add appends a layer to the sequence. Input layers cannot be added; the
// constructor creates the only one.
func (a *Architecture) Add(layer Layer) error {
	if layer.Type() == LayerInput {
		return ErrPositionReserved
	}
	if err := layer.validateParams(); err != nil {
		return err
	}
	a.layers = append(a.layers, layer)
	a.refresh()
	return nil
}

// Update replaces the layer with the given id in place, keeping its id and
// position. The input layer may only be replaced by another input layer;
// no other layer may become one.
func (a *Architecture) Update(id string, replacement Layer) error {
	idx := a.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	current := a.layers[idx]
	if (current.Type() == LayerInput) != (replacement.Type() == LayerInput) {
		if current.Type() == LayerInput {
			return ErrInputLayerFixed
		}
		return ErrPositionReserved
	}
	if err := replacement.validateParams(); err != nil {
		return err
	}
	replacement.setID(id)
	a.layers[idx] = replacement
	a.refresh()
	return nil
}

// Delete removes the layer with the given id. The input layer can never be
// deleted.
func (a *Architecture) Delete(id string) error {
	idx := a.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	if a.layers[idx].Type() == LayerInput {
		return ErrInputLayerFixed
	}
	a.layers = append(a.layers[:idx], a.layers[idx+1:]...)
	a.refresh()
	return nil
}

// Move relocates the layer with the given id to newIndex. The input layer
// cannot leave position 0 and no other layer may take it.
func (a *Architecture) Move(id string, newIndex int) error {
	idx := a.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	if newIndex < 0 || newIndex >= len(a.layers) {
		return fmt.Errorf("index %d out of range [0,%d)", newIndex, len(a.layers))
	}
	if a.layers[idx].Type() == LayerInput && newIndex != 0 {
		return ErrInputLayerFixed
	}
	if a.layers[idx].Type() != LayerInput && newIndex == 0 {
		return ErrPositionReserved
	}
	if idx == newIndex {
		return nil
	}

	layer := a.layers[idx]
	a.layers = append(a.layers[:idx], a.layers[idx+1:]...)
	a.layers = append(a.layers[:newIndex], append([]Layer{layer}, a.layers[newIndex:]...)...)
	a.refresh()
	return nil
}

// Valid reports whether the last validation produced no error-severity
// violations. Warnings do not invalidate the architecture.
func (a *Architecture) Valid() bool {
	for _, v := range a.violations {
		if !v.Warning {
			return false
		}
	}
	return true
}

// Violations returns the current validation findings, errors and warnings.
func (a *Architecture) Violations() []Violation {
	return append([]Violation(nil), a.violations...)
}

// Summary returns the derived parameter/memory estimate.
func (a *Architecture) Summary() Summary { return a.summary }

// Clone returns a deep copy sharing no state with the original. Layer ids
// are preserved.
func (a *Architecture) Clone() *Architecture {
	clone := &Architecture{
		layers:        make([]Layer, len(a.layers)),
		targetClasses: a.targetClasses,
	}
	for i, l := range a.layers {
		clone.layers[i] = cloneLayer(l)
	}
	clone.refresh()
	return clone
}

func (a *Architecture) refresh() {
	a.violations = Validate(a.layers, a.targetClasses)
	a.summary = Estimate(a.layers)
}

func (a *Architecture) indexOf(id string) int {
	for i, l := range a.layers {
		if l.ID() == id {
			return i
		}
	}
	return -1
}

func cloneLayer(l Layer) Layer {
	switch l := l.(type) {
	case *Input:
		c := *l
		return &c
	case *Dense:
		c := *l
		return &c
	case *Dropout:
		c := *l
		return &c
	case *Conv2D:
		c := *l
		return &c
	case *MaxPool2D:
		c := *l
		return &c
	case *Flatten:
		c := *l
		return &c
	default:
		return l
	}
}
