// Package vision holds the prompt and response parsing shared by the
// general-purpose vision model backends (Gemini, Ollama, OpenAI).
package vision

import (
	"DroneDetect/internal/entity"
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrNoJSON = errors.New("cannot find valid JSON in response")

const DetectionPrompt = `You are an object detector. List every distinct object visible in this image.

Return JSON only:
{
  "objects": [
    {"label": "string", "confidence": 0.0, "box": {"x1": 0.0, "y1": 0.0, "x2": 0.0, "y2": 0.0}}
  ]
}

RULES
- label: a short lowercase common noun (for example "bird", "drone", "airplane", "person").
- confidence: your certainty between 0 and 1.
- box coordinates are normalized to [0,1] relative to image width (x) and height (y), with x1<x2 and y1<y2.
- If nothing is visible return {"objects": []}.
- JSON only. No markdown, no code fences, no comments.`

type normalizedBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

type object struct {
	Label      string        `json:"label"`
	Confidence float64       `json:"confidence"`
	Box        normalizedBox `json:"box"`
}

type objectList struct {
	Objects []object `json:"objects"`
}

// ParseDetections extracts the JSON object from a model reply, scales normalized boxes
// to frame pixels and drops objects scoring below minConfidence.
func ParseDetections(response string, frame entity.Frame, minConfidence float64) ([]entity.Detection, error) {
	jsonStart := strings.Index(response, "{")
	jsonEnd := strings.LastIndex(response, "}")

	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return nil, ErrNoJSON
	}

	var parsed objectList
	if err := json.Unmarshal([]byte(response[jsonStart:jsonEnd+1]), &parsed); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}

	w := float64(frame.Width)
	h := float64(frame.Height)

	detections := make([]entity.Detection, 0, len(parsed.Objects))
	for _, o := range parsed.Objects {
		if strings.TrimSpace(o.Label) == "" {
			continue
		}

		conf := clamp(o.Confidence)
		if conf < minConfidence {
			continue
		}

		detections = append(detections, entity.Detection{
			Label:      o.Label,
			Confidence: conf,
			Box: entity.BoundingBox{
				X1: clamp(o.Box.X1) * w,
				Y1: clamp(o.Box.Y1) * h,
				X2: clamp(o.Box.X2) * w,
				Y2: clamp(o.Box.Y2) * h,
			},
		})
	}

	return detections, nil
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
