package dataset

import (
	"context"
	"math"
	"math/rand"
)

const (
	shapesImageSize = 28
	shapesClasses   = 4
	shapesTrain     = 4000
	shapesTest      = 800

	// Generation is deterministic so repeated uncached loads produce equal
	// values.
	shapesGenSeed = 73
)

// Shapes is a synthetic image dataset of rasterized geometric shapes
// (square, circle, triangle, cross) with jittered position and size. It
// needs no external source; every load regenerates the same underlying set.
type Shapes struct {
	base
}

var _ Dataset = (*Shapes)(nil)

// NewShapes creates the shapes dataset.
func NewShapes() *Shapes {
	d := &Shapes{}
	d.base = base{
		meta: Metadata{
			Name:        "shapes",
			Description: "Synthetic geometric shapes (28x28 grayscale)",
			InputShape:  []int{shapesImageSize, shapesImageSize},
			Channels:    1,
			NumClasses:  shapesClasses,
			TrainSize:   shapesTrain,
			TestSize:    shapesTest,
			ClassNames:  []string{"square", "circle", "triangle", "cross"},
		},
		produce: d.generate,
	}
	return d
}

func (d *Shapes) generate(ctx context.Context) (*Arrays, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(shapesGenSeed))

	trainImages, trainLabels := generateShapeSet(rng, shapesTrain)
	testImages, testLabels := generateShapeSet(rng, shapesTest)
	return &Arrays{
		TrainImages: trainImages,
		TrainLabels: trainLabels,
		TestImages:  testImages,
		TestLabels:  testLabels,
	}, nil
}

func generateShapeSet(rng *rand.Rand, count int) (images, labels []float32) {
	rowSize := shapesImageSize * shapesImageSize
	images = make([]float32, count*rowSize)
	labels = make([]float32, count*shapesClasses)

	for i := 0; i < count; i++ {
		class := i % shapesClasses
		img := images[i*rowSize : (i+1)*rowSize]

		// Jitter center and radius, keeping the shape fully in frame.
		radius := 5 + rng.Float64()*5
		cx := radius + 2 + rng.Float64()*(shapesImageSize-2*(radius+2))
		cy := radius + 2 + rng.Float64()*(shapesImageSize-2*(radius+2))

		switch class {
		case 0:
			drawSquare(img, cx, cy, radius)
		case 1:
			drawCircle(img, cx, cy, radius)
		case 2:
			drawTriangle(img, cx, cy, radius)
		case 3:
			drawCross(img, cx, cy, radius)
		}
		labels[i*shapesClasses+class] = 1
	}
	return images, labels
}

func setPixel(img []float32, x, y int, v float32) {
	if x < 0 || y < 0 || x >= shapesImageSize || y >= shapesImageSize {
		return
	}
	idx := y*shapesImageSize + x
	if v > img[idx] {
		img[idx] = v
	}
}

func drawSquare(img []float32, cx, cy, r float64) {
	x0, x1 := int(cx-r), int(cx+r)
	y0, y1 := int(cy-r), int(cy+r)
	for x := x0; x <= x1; x++ {
		setPixel(img, x, y0, 1)
		setPixel(img, x, y1, 1)
	}
	for y := y0; y <= y1; y++ {
		setPixel(img, x0, y, 1)
		setPixel(img, x1, y, 1)
	}
}

func drawCircle(img []float32, cx, cy, r float64) {
	steps := int(2 * math.Pi * r * 2)
	for i := 0; i < steps; i++ {
		theta := float64(i) / float64(steps) * 2 * math.Pi
		setPixel(img, int(cx+r*math.Cos(theta)), int(cy+r*math.Sin(theta)), 1)
	}
}

func drawTriangle(img []float32, cx, cy, r float64) {
	// Equilateral triangle, apex up.
	ax, ay := cx, cy-r
	bx, by := cx-r*math.Sin(math.Pi/3), cy+r/2
	cx2, cy2 := cx+r*math.Sin(math.Pi/3), cy+r/2
	drawLine(img, ax, ay, bx, by)
	drawLine(img, bx, by, cx2, cy2)
	drawLine(img, cx2, cy2, ax, ay)
}

func drawCross(img []float32, cx, cy, r float64) {
	drawLine(img, cx-r, cy-r, cx+r, cy+r)
	drawLine(img, cx-r, cy+r, cx+r, cy-r)
}

func drawLine(img []float32, x0, y0, x1, y1 float64) {
	steps := int(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))) * 2
	if steps == 0 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		setPixel(img, int(x0+t*(x1-x0)), int(y0+t*(y1-y0)), 1)
	}
}
