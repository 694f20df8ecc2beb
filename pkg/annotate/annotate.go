package annotate

import (
	"DroneDetect/internal/entity"
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

type IAnnotator interface {
	Draw(img image.Image, detections []entity.Detection) image.Image
}

type annotator struct {
	boxColor  color.Color
	textColor color.Color
	lineWidth float64
}

func New() IAnnotator {
	return &annotator{
		boxColor:  color.RGBA{0, 255, 0, 255},
		textColor: color.RGBA{0, 0, 0, 255},
		lineWidth: 2,
	}
}

// Draw returns a copy of img with one rectangle and a "<label> <conf>%" caption per
// detection. Boxes are clipped to the image.
func (a *annotator) Draw(img image.Image, detections []entity.Detection) image.Image {
	bounds := img.Bounds()
	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.DrawImage(img, -bounds.Min.X, -bounds.Min.Y)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetLineWidth(a.lineWidth)

	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	for _, d := range detections {
		x1, y1 := clip(d.Box.X1, w), clip(d.Box.Y1, h)
		x2, y2 := clip(d.Box.X2, w), clip(d.Box.Y2, h)
		if x2 <= x1 || y2 <= y1 {
			continue
		}

		dc.SetColor(a.boxColor)
		dc.DrawRectangle(x1, y1, x2-x1, y2-y1)
		dc.Stroke()

		caption := fmt.Sprintf("%s %.1f%%", d.Label, d.Confidence*100)
		tw, th := dc.MeasureString(caption)

		// caption sits above the box, or inside it when the box touches the top edge
		ty := y1 - 4
		if ty-th < 0 {
			ty = y1 + th + 4
		}

		dc.DrawRectangle(x1, ty-th-2, tw+4, th+4)
		dc.Fill()

		dc.SetColor(a.textColor)
		dc.DrawString(caption, x1+2, ty)
	}

	return dc.Image()
}

func clip(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
