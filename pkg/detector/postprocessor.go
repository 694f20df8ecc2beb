package detector

import (
	"DroneDetect/internal/entity"
	"strings"
)

// Postprocessor filters or modifies the detections returned by a backend.
type Postprocessor func([]entity.Detection) []entity.Detection

// NewScoreFilter drops detections whose confidence is below conf.
func NewScoreFilter(conf float64) Postprocessor {
	return func(in []entity.Detection) []entity.Detection {
		out := make([]entity.Detection, 0, len(in))
		for _, d := range in {
			if d.Confidence >= conf {
				out = append(out, d)
			}
		}
		return out
	}
}

// NewLabelNormalizer lower-cases and trims every label.
func NewLabelNormalizer() Postprocessor {
	return func(in []entity.Detection) []entity.Detection {
		out := make([]entity.Detection, len(in))
		for i, d := range in {
			d.Label = strings.ToLower(strings.TrimSpace(d.Label))
			out[i] = d
		}
		return out
	}
}

// NewBoxScaler maps boxes from model-input pixels back to original-image pixels.
func NewBoxScaler(factor float64) Postprocessor {
	return func(in []entity.Detection) []entity.Detection {
		if factor == 1 {
			return in
		}
		out := make([]entity.Detection, len(in))
		for i, d := range in {
			d.Box = d.Box.Scale(factor)
			out[i] = d
		}
		return out
	}
}

// Chain applies each postprocessor in order.
func Chain(in []entity.Detection, steps ...Postprocessor) []entity.Detection {
	for _, step := range steps {
		in = step(in)
	}
	return in
}
