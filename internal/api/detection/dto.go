package detection

type DetectRequest struct {
	Image string `json:"image" validate:"required"`
}

type LabelConfidence struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// DetectResponse keeps the drone_detected wire name whatever the configured keywords are.
type DetectResponse struct {
	DroneDetected  bool              `json:"drone_detected"`
	Confidence     float64           `json:"confidence"`
	DetectedLabels []LabelConfidence `json:"detected_labels"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Detector string `json:"detector"`
}
