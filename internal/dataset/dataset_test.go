package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielDeml/simpleaiv2-sub001/internal/ml"
)

// newCounting builds a tiny synthetic dataset whose example i is the row
// [i, i, i] with class i % numClasses, so image/label pairing is checkable
// after any permutation.
func newCounting(trainSize, testSize int) *countingDataset {
	d := &countingDataset{}
	d.base = base{
		meta: Metadata{
			Name:       "counting",
			InputShape: []int{3},
			Channels:   1,
			NumClasses: 4,
			TrainSize:  trainSize,
			TestSize:   testSize,
			ClassNames: []string{"a", "b", "c", "d"},
		},
		produce: d.generate,
	}
	return d
}

type countingDataset struct {
	base
	produceCalls int
}

func (d *countingDataset) generate(ctx context.Context) (*Arrays, error) {
	d.produceCalls++
	gen := func(n int) (images, labels []float32) {
		images = make([]float32, n*3)
		labels = make([]float32, n*4)
		for i := 0; i < n; i++ {
			for j := 0; j < 3; j++ {
				images[i*3+j] = float32(i)
			}
			labels[i*4+i%4] = 1
		}
		return images, labels
	}
	out := &Arrays{}
	out.TrainImages, out.TrainLabels = gen(d.meta.TrainSize)
	out.TestImages, out.TestLabels = gen(d.meta.TestSize)
	return out, nil
}

func TestLoad_ArraySizing(t *testing.T) {
	ctx := context.Background()
	datasets := []Dataset{newCounting(40, 12), NewShapes(), NewSentiment()}

	for _, ds := range datasets {
		meta := ds.Metadata()
		t.Run(meta.Name, func(t *testing.T) {
			arrays, err := ds.Load(ctx)
			require.NoError(t, err)

			assert.Len(t, arrays.TrainImages, meta.TrainSize*meta.ExampleSize())
			assert.Len(t, arrays.TrainLabels, meta.TrainSize*meta.NumClasses)
			assert.Len(t, arrays.TestImages, meta.TestSize*meta.ExampleSize())
			assert.Len(t, arrays.TestLabels, meta.TestSize*meta.NumClasses)
			assert.Len(t, meta.ClassNames, meta.NumClasses)
		})
	}
}

func TestLoad_LabelsAreOneHot(t *testing.T) {
	ctx := context.Background()
	for _, ds := range []Dataset{NewShapes(), NewSentiment()} {
		meta := ds.Metadata()
		t.Run(meta.Name, func(t *testing.T) {
			arrays, err := ds.Load(ctx, WithSeed(1))
			require.NoError(t, err)

			for _, labels := range [][]float32{arrays.TrainLabels, arrays.TestLabels} {
				for i := 0; i+meta.NumClasses <= len(labels); i += meta.NumClasses {
					var sum float32
					for _, v := range labels[i : i+meta.NumClasses] {
						require.True(t, v == 0 || v == 1)
						sum += v
					}
					require.Equal(t, float32(1), sum)
				}
			}
		})
	}
}

func TestLoad_CacheIdentity(t *testing.T) {
	ctx := context.Background()
	ds := newCounting(24, 8)

	first, err := ds.Load(ctx)
	require.NoError(t, err)
	second, err := ds.Load(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second, "cached loads must return the same object")

	require.NoError(t, ds.ClearCache())
	third, err := ds.Load(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestLoad_WithoutCacheRecomputes(t *testing.T) {
	ctx := context.Background()
	ds := newCounting(24, 8)

	first, err := ds.Load(ctx, WithoutCache(), WithoutShuffle())
	require.NoError(t, err)
	second, err := ds.Load(ctx, WithoutCache(), WithoutShuffle())
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, first.TrainImages, second.TrainImages)
	assert.Equal(t, first.TrainLabels, second.TrainLabels)
	assert.Equal(t, 2, ds.produceCalls)
}

func TestLoad_ShuffleChangesOrder(t *testing.T) {
	ctx := context.Background()
	ds := newCounting(200, 20)

	ordered, err := ds.Load(ctx, WithoutShuffle(), WithoutCache())
	require.NoError(t, err)
	shuffled, err := ds.Load(ctx, WithSeed(42), WithoutCache())
	require.NoError(t, err)

	require.Len(t, shuffled.TrainImages, len(ordered.TrainImages))
	assert.NotEqual(t, ordered.TrainImages, shuffled.TrainImages)
}

func TestLoad_SeededShuffleIsReproducible(t *testing.T) {
	ctx := context.Background()
	ds := newCounting(100, 10)

	a, err := ds.Load(ctx, WithSeed(42), WithoutCache())
	require.NoError(t, err)
	b, err := ds.Load(ctx, WithSeed(42), WithoutCache())
	require.NoError(t, err)
	c, err := ds.Load(ctx, WithSeed(43), WithoutCache())
	require.NoError(t, err)

	assert.Equal(t, a.TrainImages, b.TrainImages)
	assert.NotEqual(t, a.TrainImages, c.TrainImages)
}

func TestLoad_ShufflePreservesPairing(t *testing.T) {
	ctx := context.Background()
	ds := newCounting(64, 16)

	arrays, err := ds.Load(ctx, WithSeed(7))
	require.NoError(t, err)

	meta := ds.Metadata()
	for i := 0; i < meta.TrainSize; i++ {
		example := int(arrays.TrainImages[i*3])
		label := arrays.TrainLabels[i*4 : (i+1)*4]
		require.Equal(t, float32(1), label[example%4],
			"example %d moved without its label", example)
	}
}

func TestLoad_SampleRatioTruncatesBeforeShuffle(t *testing.T) {
	ctx := context.Background()
	ds := newCounting(40, 20)

	arrays, err := ds.Load(ctx, WithTrainSampleRatio(0.5), WithTestSampleRatio(0.25), WithSeed(3), WithoutCache())
	require.NoError(t, err)

	// floor(40*0.5)=20 train, floor(20*0.25)=5 test examples.
	assert.Len(t, arrays.TrainImages, 20*3)
	assert.Len(t, arrays.TestImages, 5*3)

	// Truncation happens before shuffling: only examples from the ordered
	// prefix [0,20) may appear.
	for i := 0; i < 20; i++ {
		require.Less(t, arrays.TrainImages[i*3], float32(20))
	}
}

func TestLoad_InvalidRatio(t *testing.T) {
	ctx := context.Background()
	ds := newCounting(10, 10)

	_, err := ds.Load(ctx, WithTrainSampleRatio(0))
	assert.Error(t, err)
	_, err = ds.Load(ctx, WithTestSampleRatio(1.5))
	assert.Error(t, err)
}

func TestLCG_Recurrence(t *testing.T) {
	// seed=(seed*9301+49297) mod 233280, value = seed/233280.
	gen := &lcg{seed: 42}
	first := gen.next()
	assert.InDelta(t, float64((42*9301+49297)%233280)/233280, first, 1e-12)

	gen2 := &lcg{seed: 42}
	assert.Equal(t, first, gen2.next())
}

func TestLoadTensors_Shapes(t *testing.T) {
	ctx := context.Background()
	backend := ml.NewMock()

	t.Run("image dataset is rank 4", func(t *testing.T) {
		ds := NewShapes()
		tensors, err := ds.LoadTensors(ctx, backend, WithTrainSampleRatio(0.01), WithTestSampleRatio(0.01))
		require.NoError(t, err)
		defer tensors.Release()

		assert.Equal(t, []int{40, 28, 28, 1}, tensors.TrainImages.Shape())
		assert.Equal(t, []int{40, 4}, tensors.TrainLabels.Shape())
		assert.Equal(t, []int{8, 28, 28, 1}, tensors.TestImages.Shape())
	})

	t.Run("sequence dataset is rank 2", func(t *testing.T) {
		ds := NewSentiment()
		meta := ds.Metadata()
		tensors, err := ds.LoadTensors(ctx, backend)
		require.NoError(t, err)
		defer tensors.Release()

		assert.Equal(t, []int{meta.TrainSize, 150}, tensors.TrainImages.Shape())
		assert.Equal(t, []int{meta.TrainSize, 2}, tensors.TrainLabels.Shape())
	})
}

func TestTensors_Release(t *testing.T) {
	ctx := context.Background()
	backend := ml.NewMock()
	ds := newCounting(8, 4)

	tensors, err := ds.LoadTensors(ctx, backend)
	require.NoError(t, err)
	tensors.Release()

	assert.True(t, tensors.TrainImages.(*ml.MockTensor).Released)
	assert.True(t, tensors.TestLabels.(*ml.MockTensor).Released)
}

func TestLoad_InFlightGuards(t *testing.T) {
	ctx := context.Background()
	ds := newCounting(8, 4)

	// Re-enter Load and ClearCache from inside the producer, while the outer
	// load holds the loading flag.
	var nestedLoadErr, clearErr error
	inner := ds.base.produce
	ds.base.produce = func(ctx context.Context) (*Arrays, error) {
		_, nestedLoadErr = ds.Load(ctx)
		clearErr = ds.ClearCache()
		return inner(ctx)
	}

	_, err := ds.Load(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, nestedLoadErr, ErrLoadInFlight)
	assert.ErrorIs(t, clearErr, ErrLoadInFlight)

	// The flag is cleared once the outer load finishes.
	require.NoError(t, ds.ClearCache())
	_, err = ds.Load(ctx)
	assert.NoError(t, err)
}
