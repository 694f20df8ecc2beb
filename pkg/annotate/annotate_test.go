package annotate

import (
	"DroneDetect/internal/entity"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func blank(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{0, 0, 0, 255})
		}
	}
	return img
}

func TestDrawPaintsBoxEdges(t *testing.T) {
	src := blank(100, 100)
	out := New().Draw(src, []entity.Detection{
		{Label: "bird", Confidence: 0.5, Box: entity.BoundingBox{X1: 20, Y1: 40, X2: 80, Y2: 90}},
	})

	assert.Equal(t, src.Bounds().Size(), out.Bounds().Size())

	// left edge of the box is green
	r, g, b, _ := out.At(20, 70).RGBA()
	assert.Zero(t, r>>8)
	assert.Greater(t, g>>8, uint32(100))
	assert.Zero(t, b>>8)

	// centre of the box is untouched
	r, g, b, _ = out.At(50, 70).RGBA()
	assert.Zero(t, r+g+b)

	// source image is not modified
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, src.RGBAAt(20, 70))
}

func TestDrawSkipsDegenerateBoxes(t *testing.T) {
	src := blank(10, 10)
	out := New().Draw(src, []entity.Detection{
		{Label: "none", Confidence: 0.9},
		{Label: "off", Confidence: 0.9, Box: entity.BoundingBox{X1: 50, Y1: 50, X2: 60, Y2: 60}},
	})

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			r, g, b, _ := out.At(x, y).RGBA()
			assert.Zero(t, r+g+b)
		}
	}
}
