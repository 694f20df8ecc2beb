package detectionService

import (
	"DroneDetect/internal/api/detection"
	"DroneDetect/internal/entity"
	contextPkg "DroneDetect/pkg/context"
	"DroneDetect/pkg/detector"
	"DroneDetect/pkg/response"
	"golang.org/x/net/context"
	"image"
	"strings"

	"github.com/sirupsen/logrus"
)

func (s *detectionService) DetectorName() string {
	return s.detector.Name()
}

func (s *detectionService) DetectBase64(ctx context.Context, encoded string) (*detection.DetectResponse, error) {
	img, err := s.decodeBase64(encoded)
	if err != nil {
		return nil, err
	}

	resp, _, err := s.DetectImage(ctx, img)
	return resp, err
}

func (s *detectionService) DetectBytes(ctx context.Context, data []byte) (*detection.DetectResponse, error) {
	img, err := s.utils.DecodeImage(data)
	if err != nil {
		return nil, response.Wrap(detection.ErrInvalidImage, err)
	}

	resp, _, err := s.DetectImage(ctx, img)
	return resp, err
}

// DetectImage runs the model on img and returns the summary together with the
// detections, whose boxes are in img's pixel space.
func (s *detectionService) DetectImage(ctx context.Context, img image.Image) (*detection.DetectResponse, []entity.Detection, error) {
	frame, scale, err := s.utils.PrepareFrame(img, s.cfg.ImageSize)
	if err != nil {
		return nil, nil, response.Wrap(detection.ErrPredictionFailed, err)
	}

	raw, err := s.detector.Detect(ctx, frame, entity.DetectOptions{
		Confidence: s.cfg.Confidence,
		ImageSize:  s.cfg.ImageSize,
	})
	if err != nil {
		return nil, nil, response.Wrap(detection.ErrPredictionFailed, err)
	}

	detections := detector.Chain(raw,
		detector.NewScoreFilter(s.cfg.Confidence),
		detector.NewLabelNormalizer(),
		detector.NewBoxScaler(scale),
	)

	requestID := contextPkg.GetRequestID(ctx)
	for _, d := range detections {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"label":      d.Label,
			"confidence": d.Confidence,
		}).Debug("Detected label")
	}

	summary := Summarize(detections, s.cfg.Keywords)
	return &summary, detections, nil
}

func (s *detectionService) AnnotateBase64(ctx context.Context, encoded string) ([]byte, *detection.DetectResponse, error) {
	img, err := s.decodeBase64(encoded)
	if err != nil {
		return nil, nil, err
	}

	summary, detections, err := s.DetectImage(ctx, img)
	if err != nil {
		return nil, nil, err
	}

	out, err := s.Annotate(img, detections)
	if err != nil {
		return nil, nil, err
	}

	return out, summary, nil
}

func (s *detectionService) Annotate(img image.Image, detections []entity.Detection) ([]byte, error) {
	out, err := s.utils.EncodeJPEG(s.annotator.Draw(img, detections))
	if err != nil {
		return nil, response.Wrap(detection.ErrAnnotationFailed, err)
	}
	return out, nil
}

func (s *detectionService) decodeBase64(encoded string) (image.Image, error) {
	if strings.TrimSpace(encoded) == "" {
		return nil, detection.ErrNoImageData
	}

	data, err := s.utils.DecodeBase64Image(encoded)
	if err != nil {
		return nil, response.Wrap(detection.ErrInvalidImage, err)
	}

	img, err := s.utils.DecodeImage(data)
	if err != nil {
		return nil, response.Wrap(detection.ErrInvalidImage, err)
	}

	return img, nil
}
