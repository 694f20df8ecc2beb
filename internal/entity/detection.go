package entity

// BoundingBox is expressed in pixels of the image the detection refers to.
type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Scale multiplies every coordinate by factor.
func (b BoundingBox) Scale(factor float64) BoundingBox {
	return BoundingBox{
		X1: b.X1 * factor,
		Y1: b.Y1 * factor,
		X2: b.X2 * factor,
		Y2: b.Y2 * factor,
	}
}

type Detection struct {
	Label      string      `json:"label"`
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"box"`
}

// Frame is the encoded image handed to a detector backend.
type Frame struct {
	JPEG   []byte
	Width  int
	Height int
}

// DetectOptions are passed through to the model on every call.
type DetectOptions struct {
	Confidence float64
	ImageSize  int
}
