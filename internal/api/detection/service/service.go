package detectionService

import (
	"DroneDetect/internal/api/detection"
	"DroneDetect/internal/entity"
	"DroneDetect/pkg/annotate"
	"DroneDetect/pkg/detector"
	"DroneDetect/pkg/utils"
	"golang.org/x/net/context"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

type IDetectionService interface {
	DetectBase64(ctx context.Context, encoded string) (*detection.DetectResponse, error)
	DetectBytes(ctx context.Context, data []byte) (*detection.DetectResponse, error)
	DetectImage(ctx context.Context, img image.Image) (*detection.DetectResponse, []entity.Detection, error)
	AnnotateBase64(ctx context.Context, encoded string) ([]byte, *detection.DetectResponse, error)
	Annotate(img image.Image, detections []entity.Detection) ([]byte, error)
	DetectorName() string
}

type Config struct {
	Keywords   []string
	Confidence float64
	ImageSize  int
}

// ConfigFromEnv reads DETECTION_KEYWORDS, DETECTION_CONFIDENCE and DETECTION_IMAGE_SIZE.
func ConfigFromEnv() Config {
	cfg := Config{
		Keywords:   []string{"drone", "bird"},
		Confidence: 0.3,
		ImageSize:  640,
	}

	if raw := os.Getenv("DETECTION_KEYWORDS"); raw != "" {
		var keywords []string
		for _, kw := range strings.Split(raw, ",") {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) > 0 {
			cfg.Keywords = keywords
		}
	}

	if raw := os.Getenv("DETECTION_CONFIDENCE"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 && v <= 1 {
			cfg.Confidence = v
		}
	}

	if raw := os.Getenv("DETECTION_IMAGE_SIZE"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.ImageSize = v
		}
	}

	return cfg
}

type detectionService struct {
	log       *logrus.Logger
	detector  detector.Detector
	utils     utils.IUtils
	annotator annotate.IAnnotator
	cfg       Config
}

func NewDetectionService(
	log *logrus.Logger,
	detector detector.Detector,
	utils utils.IUtils,
	annotator annotate.IAnnotator,
	cfg Config,
) IDetectionService {
	return &detectionService{
		log:       log,
		detector:  detector,
		utils:     utils,
		annotator: annotator,
		cfg:       cfg,
	}
}
