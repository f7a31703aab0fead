package dataset

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// The canonical MNIST sprite endpoints: a PNG sprite sheet with one 784-pixel
// image per row, and a raw byte array of one-hot labels.
const (
	mnistImagesURL = "https://storage.googleapis.com/learnjs-data/model-builder/mnist_images.png"
	mnistLabelsURL = "https://storage.googleapis.com/learnjs-data/model-builder/mnist_labels_uint8"

	mnistImageSize = 28
	mnistRowPixels = mnistImageSize * mnistImageSize
	mnistClasses   = 10
	mnistTrainSize = 55000
	mnistTestSize  = 10000
)

// MNIST loads the handwritten-digit dataset from its sprite-sheet source.
//
// The sprite and label files are fetched once over HTTP (concurrently) and
// retained; Load then slices, samples and shuffles the decoded buffers.
type MNIST struct {
	base

	imagesURL string
	labelsURL string
	client    *http.Client

	images  []float32
	labels  []float32
	fetched bool
}

var _ Dataset = (*MNIST)(nil)

// NewMNIST creates the standard 55k/10k MNIST dataset backed by the public
// sprite endpoints.
func NewMNIST() *MNIST {
	return NewMNISTFromSource(mnistImagesURL, mnistLabelsURL, mnistTrainSize, mnistTestSize, nil)
}

// NewMNISTFromSource creates an MNIST-format dataset backed by custom sprite
// and label endpoints, sized trainSize+testSize. A nil client uses a default
// with a 60s timeout. Intended for mirrors and tests.
func NewMNISTFromSource(imagesURL, labelsURL string, trainSize, testSize int, client *http.Client) *MNIST {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	d := &MNIST{
		imagesURL: imagesURL,
		labelsURL: labelsURL,
		client:    client,
	}
	d.base = base{
		meta: Metadata{
			Name:        "mnist",
			Description: "Handwritten digits (28x28 grayscale)",
			InputShape:  []int{mnistImageSize, mnistImageSize},
			Channels:    1,
			NumClasses:  mnistClasses,
			TrainSize:   trainSize,
			TestSize:    testSize,
			ClassNames:  []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"},
		},
		produce: d.produceArrays,
	}
	return d
}

// Fetch downloads and decodes the sprite and label files. It is a no-op once
// the data is in memory. Failures are reported as ErrDataUnavailable; no
// partial data is retained.
func (d *MNIST) Fetch(ctx context.Context) error {
	if d.fetched {
		return nil
	}

	slog.Debug("fetching mnist source", "images", d.imagesURL, "labels", d.labelsURL)
	var spriteBytes, labelBytes []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		spriteBytes, err = d.get(gctx, d.imagesURL)
		return err
	})
	g.Go(func() error {
		var err error
		labelBytes, err = d.get(gctx, d.labelsURL)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}

	images, err := decodeSprite(spriteBytes, d.totalExamples())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	labels, err := decodeLabels(labelBytes, d.totalExamples())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}

	d.images = images
	d.labels = labels
	d.fetched = true
	return nil
}

// TrainSet returns the decoded training images and labels. It fails with
// ErrNotLoaded before Fetch (or a Load) has run.
func (d *MNIST) TrainSet() (images, labels []float32, err error) {
	if !d.fetched {
		return nil, nil, ErrNotLoaded
	}
	n := d.meta.TrainSize
	return d.images[:n*mnistRowPixels], d.labels[:n*mnistClasses], nil
}

// TestSet returns the decoded test images and labels. It fails with
// ErrNotLoaded before Fetch (or a Load) has run.
func (d *MNIST) TestSet() (images, labels []float32, err error) {
	if !d.fetched {
		return nil, nil, ErrNotLoaded
	}
	n := d.meta.TrainSize
	return d.images[n*mnistRowPixels:], d.labels[n*mnistClasses:], nil
}

func (d *MNIST) totalExamples() int { return d.meta.TrainSize + d.meta.TestSize }

func (d *MNIST) produceArrays(ctx context.Context) (*Arrays, error) {
	if err := d.Fetch(ctx); err != nil {
		return nil, err
	}
	split := d.meta.TrainSize
	return &Arrays{
		TrainImages: d.images[:split*mnistRowPixels],
		TrainLabels: d.labels[:split*mnistClasses],
		TestImages:  d.images[split*mnistRowPixels:],
		TestLabels:  d.labels[split*mnistClasses:],
	}, nil
}

func (d *MNIST) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// decodeSprite decodes the PNG sprite sheet (one example per row) into
// normalized [0,1] grayscale floats.
func decodeSprite(data []byte, wantExamples int) ([]float32, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode sprite: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != mnistRowPixels {
		return nil, fmt.Errorf("sprite width %d, want %d", bounds.Dx(), mnistRowPixels)
	}
	if bounds.Dy() != wantExamples {
		return nil, fmt.Errorf("sprite has %d rows, want %d", bounds.Dy(), wantExamples)
	}

	gray := image.NewGray(bounds)
	xdraw.Copy(gray, bounds.Min, img, bounds, xdraw.Src, nil)

	out := make([]float32, wantExamples*mnistRowPixels)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		rowStart := (y - bounds.Min.Y) * gray.Stride
		row := gray.Pix[rowStart : rowStart+mnistRowPixels]
		for _, px := range row {
			out[i] = float32(px) / 255.0
			i++
		}
	}
	return out, nil
}

// decodeLabels converts the raw one-hot byte array into floats.
func decodeLabels(data []byte, wantExamples int) ([]float32, error) {
	want := wantExamples * mnistClasses
	if len(data) != want {
		return nil, fmt.Errorf("label file has %d bytes, want %d", len(data), want)
	}
	out := make([]float32, want)
	for i, b := range data {
		out[i] = float32(b)
	}
	return out, nil
}
