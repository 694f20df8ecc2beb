package detectionService

import (
	"DroneDetect/internal/api/detection"
	"DroneDetect/internal/entity"
	"math"
	"strings"
)

// Summarize classifies detections against keywords.
//
// Every detection is listed in order. The first detection whose label contains a
// keyword (case-insensitive) sets DroneDetected and its own confidence, even when a
// later detection scores higher. Without a match, Confidence is the highest score seen,
// or 0 for no detections. Confidences are percentages rounded to 2 decimals.
func Summarize(detections []entity.Detection, keywords []string) detection.DetectResponse {
	resp := detection.DetectResponse{
		DetectedLabels: make([]detection.LabelConfidence, 0, len(detections)),
	}

	maxConfidence := 0.0
	matchConfidence := 0.0

	for _, d := range detections {
		conf := clampUnit(d.Confidence)
		label := strings.ToLower(strings.TrimSpace(d.Label))

		resp.DetectedLabels = append(resp.DetectedLabels, detection.LabelConfidence{
			Label:      label,
			Confidence: toPercent(conf),
		})

		if conf > maxConfidence {
			maxConfidence = conf
		}

		if !resp.DroneDetected && matchesAny(label, keywords) {
			resp.DroneDetected = true
			matchConfidence = conf
		}
	}

	if resp.DroneDetected {
		resp.Confidence = toPercent(matchConfidence)
	} else {
		resp.Confidence = toPercent(maxConfidence)
	}

	return resp
}

func matchesAny(label string, keywords []string) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(label, kw) {
			return true
		}
	}
	return false
}

func toPercent(conf float64) float64 {
	return math.Round(conf*100*100) / 100
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
