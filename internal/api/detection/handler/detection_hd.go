package detectionHandler

import (
	"DroneDetect/internal/api/detection"
	contextPkg "DroneDetect/pkg/context"
	"DroneDetect/pkg/handlerUtil"
	"DroneDetect/pkg/log"
	"DroneDetect/pkg/response"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/context"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const SummaryHeader = "X-Detection-Summary"

func (h *DetectionHandler) Detect(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing detection request")

	req, err := h.parseRequest(ctx)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	result, err := h.detectionService.DetectBase64(c, req.Image)

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
	}

	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "detect")
	}

	h.log.WithFields(log.Fields{
		"request_id":     requestID,
		"path":           ctx.Path(),
		"drone_detected": result.DroneDetected,
		"confidence":     result.Confidence,
		"labels":         len(result.DetectedLabels),
	}).Info("Detection successful")

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
}

func (h *DetectionHandler) DetectAnnotated(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	req, err := h.parseRequest(ctx)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	img, result, err := h.detectionService.AnnotateBase64(c, req.Image)

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
	}

	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "detect_annotated")
	}

	summary, err := json.Marshal(result)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "marshal_summary")
	}

	ctx.Set(SummaryHeader, string(summary))
	ctx.Set(fiber.HeaderContentType, "image/jpeg")
	return ctx.Status(fiber.StatusOK).Send(img)
}

func (h *DetectionHandler) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(detection.HealthResponse{
		Status:   "ok",
		Detector: h.detectionService.DetectorName(),
	})
}

// parseRequest treats an empty body, a body that is not JSON and a missing image
// field alike: nothing to run the model on.
func (h *DetectionHandler) parseRequest(ctx *fiber.Ctx) (*detection.DetectRequest, error) {
	if len(ctx.Body()) == 0 {
		return nil, detection.ErrNoImageData
	}

	var req detection.DetectRequest
	if err := json.Unmarshal(ctx.Body(), &req); err != nil {
		return nil, response.Wrap(detection.ErrNoImageData, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return nil, response.Wrap(detection.ErrNoImageData, err)
	}

	return &req, nil
}
