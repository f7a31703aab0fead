package arch

// bytesPerValue assumes 32-bit float storage.
const bytesPerValue = 4

// LayerEstimate is the per-layer slice of a Summary.
type LayerEstimate struct {
	ID     string
	Type   LayerType
	Units  int
	Params int64
}

// Summary is the derived parameter count and memory footprint of an
// architecture. The memory figure is a heuristic upper bound: parameter
// storage plus the largest dense activation, both at 4 bytes per value.
type Summary struct {
	TotalParams int64
	MemoryBytes int64
	Layers      []LayerEstimate
}

// Estimate computes a Summary from the layer sequence alone, without
// building a model. Dense layers contribute prev.units*units + units
// (weights plus biases); input and dropout layers contribute zero and
// dropout passes the unit count through unchanged. Convolutional layers are
// outside the dense-chain heuristic and also count as zero.
func Estimate(layers []Layer) Summary {
	s := Summary{Layers: make([]LayerEstimate, 0, len(layers))}

	prevUnits := 0
	maxDenseUnits := 0
	for _, layer := range layers {
		est := LayerEstimate{ID: layer.ID(), Type: layer.Type()}
		switch l := layer.(type) {
		case *Input:
			est.Units = l.Units
			prevUnits = l.Units
		case *Dense:
			est.Units = l.Units
			est.Params = int64(prevUnits)*int64(l.Units) + int64(l.Units)
			prevUnits = l.Units
			if l.Units > maxDenseUnits {
				maxDenseUnits = l.Units
			}
		case *Dropout:
			est.Units = prevUnits
		case *Conv2D, *MaxPool2D, *Flatten:
			est.Units = prevUnits
		}
		s.TotalParams += est.Params
		s.Layers = append(s.Layers, est)
	}

	s.MemoryBytes = s.TotalParams*bytesPerValue + int64(maxDenseUnits)*bytesPerValue
	return s
}
