package gonum

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/GabrielDeml/simpleaiv2-sub001/internal/ml"
)

// toDense copies a float32 buffer into a freshly allocated float64 matrix.
func toDense(data []float32, rows, cols int) *mat.Dense {
	out := make([]float64, rows*cols)
	for i, v := range data {
		out[i] = float64(v)
	}
	return mat.NewDense(rows, cols, out)
}

// gatherRows builds a new matrix from the selected rows of src.
func gatherRows(src *mat.Dense, indices []int) *mat.Dense {
	_, cols := src.Dims()
	out := mat.NewDense(len(indices), cols, nil)
	for i, idx := range indices {
		out.SetRow(i, src.RawRowView(idx))
	}
	return out
}

// addRowwise adds the bias vector to every row of z in place.
func addRowwise(z *mat.Dense, bias *mat.VecDense) {
	rows, cols := z.Dims()
	raw := z.RawMatrix()
	b := bias.RawVector().Data
	for i := 0; i < rows; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+cols]
		for j := range row {
			row[j] += b[j]
		}
	}
}

// columnSums sums each column of m into a vector.
func columnSums(m *mat.Dense) *mat.VecDense {
	rows, cols := m.Dims()
	out := mat.NewVecDense(cols, nil)
	data := out.RawVector().Data
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data[j] += m.At(i, j)
		}
	}
	return out
}

// applyActivation returns a new matrix with the activation applied to z.
// Softmax is computed per row with the usual max shift for stability.
func applyActivation(z *mat.Dense, act ml.Activation) *mat.Dense {
	rows, cols := z.Dims()
	out := mat.NewDense(rows, cols, nil)
	switch act {
	case ml.ActivationReLU:
		out.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, z)
	case ml.ActivationSigmoid:
		out.Apply(func(_, _ int, v float64) float64 { return sigmoid(v) }, z)
	case ml.ActivationTanh:
		out.Apply(func(_, _ int, v float64) float64 { return math.Tanh(v) }, z)
	case ml.ActivationSoftmax:
		for i := 0; i < rows; i++ {
			max := z.At(i, 0)
			for j := 1; j < cols; j++ {
				if v := z.At(i, j); v > max {
					max = v
				}
			}
			var sum float64
			for j := 0; j < cols; j++ {
				e := math.Exp(z.At(i, j) - max)
				out.Set(i, j, e)
				sum += e
			}
			for j := 0; j < cols; j++ {
				out.Set(i, j, out.At(i, j)/sum)
			}
		}
	default: // linear
		out.Copy(z)
	}
	return out
}

// mulActivationGrad multiplies delta in place by the activation's gradient,
// turning dLoss/dA into dLoss/dZ. z is the pre-activation and a the matching
// activation output; softmax uses its full Jacobian-vector product, the
// elementwise activations only need one of the two.
func mulActivationGrad(delta, z, a *mat.Dense, act ml.Activation) {
	rows, cols := delta.Dims()
	switch act {
	case ml.ActivationReLU:
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				if z.At(i, j) <= 0 {
					delta.Set(i, j, 0)
				}
			}
		}
	case ml.ActivationSigmoid:
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				s := a.At(i, j)
				delta.Set(i, j, delta.At(i, j)*s*(1-s))
			}
		}
	case ml.ActivationTanh:
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				t := a.At(i, j)
				delta.Set(i, j, delta.At(i, j)*(1-t*t))
			}
		}
	case ml.ActivationSoftmax:
		// dZ_j = s_j * (dA_j - sum_k dA_k s_k), row by row.
		for i := 0; i < rows; i++ {
			var dot float64
			for j := 0; j < cols; j++ {
				dot += delta.At(i, j) * a.At(i, j)
			}
			for j := 0; j < cols; j++ {
				delta.Set(i, j, a.At(i, j)*(delta.At(i, j)-dot))
			}
		}
	}
	// linear leaves delta untouched
}

func sigmoid(v float64) float64 { return 1 / (1 + math.Exp(-v)) }
