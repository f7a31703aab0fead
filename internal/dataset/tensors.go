package dataset

import (
	"context"
	"fmt"

	"github.com/GabrielDeml/simpleaiv2-sub001/internal/ml"
)

// Tensors is the structured view of a dataset's arrays: image datasets get
// rank-4 example tensors, sequence datasets rank-2; labels are rank-2
// one-hot. Tensors are caller-owned and must be released after use.
type Tensors struct {
	TrainImages ml.Tensor
	TrainLabels ml.Tensor
	TestImages  ml.Tensor
	TestLabels  ml.Tensor
}

// Release frees all four tensors. Safe to call on a partially populated
// struct.
func (t *Tensors) Release() {
	for _, tensor := range []ml.Tensor{t.TrainImages, t.TrainLabels, t.TestImages, t.TestLabels} {
		if tensor != nil {
			tensor.Release()
		}
	}
}

// LoadTensors implements Dataset.LoadTensors for any base-backed dataset.
// The flat-array step is identical for image and sequence datasets; only the
// example tensor rank differs, chosen from the metadata's input shape.
func (b *base) LoadTensors(ctx context.Context, backend ml.Backend, opts ...LoadOption) (*Tensors, error) {
	arrays, err := b.Load(ctx, opts...)
	if err != nil {
		return nil, err
	}

	meta := b.meta
	out := &Tensors{}
	ok := false
	defer func() {
		if !ok {
			out.Release()
		}
	}()

	out.TrainImages, err = exampleTensor(backend, meta, arrays.TrainImages)
	if err != nil {
		return nil, err
	}
	out.TrainLabels, err = labelTensor(backend, meta, arrays.TrainLabels)
	if err != nil {
		return nil, err
	}
	out.TestImages, err = exampleTensor(backend, meta, arrays.TestImages)
	if err != nil {
		return nil, err
	}
	out.TestLabels, err = labelTensor(backend, meta, arrays.TestLabels)
	if err != nil {
		return nil, err
	}
	ok = true
	return out, nil
}

func exampleTensor(backend ml.Backend, meta Metadata, data []float32) (ml.Tensor, error) {
	rowSize := meta.ExampleSize()
	batch := len(data) / rowSize
	// Copy so released tensors never alias a cached Arrays buffer.
	buf := append([]float32(nil), data...)

	switch len(meta.InputShape) {
	case 2:
		return backend.NewTensor(buf, batch, meta.InputShape[0], meta.InputShape[1], meta.Channels)
	case 1:
		return backend.NewTensor(buf, batch, meta.InputShape[0])
	default:
		return nil, fmt.Errorf("dataset %s: unsupported input shape %v", meta.Name, meta.InputShape)
	}
}

func labelTensor(backend ml.Backend, meta Metadata, data []float32) (ml.Tensor, error) {
	batch := len(data) / meta.NumClasses
	buf := append([]float32(nil), data...)
	return backend.NewTensor(buf, batch, meta.NumClasses)
}
