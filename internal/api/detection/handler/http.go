package detectionHandler

import (
	detectionService "DroneDetect/internal/api/detection/service"
	"DroneDetect/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
	"time"
)

type DetectionHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	detectionService detectionService.IDetectionService
	timeout          time.Duration
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ds detectionService.IDetectionService,
	timeout time.Duration,
) *DetectionHandler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &DetectionHandler{
		detectionService: ds,
		log:              log,
		validator:        validator,
		middleware:       middleware,
		timeout:          timeout,
	}
}

func (h *DetectionHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	srv.Post("/detect", h.middleware.NewRateLimiter, h.Detect)
	srv.Post("/detect/annotate", h.middleware.NewRateLimiter, h.DetectAnnotated)

	srv.Use("/ws", wsMiddleware)
	srv.Get("/ws", websocket.New(h.handleWebSocket))

	srv.Get("/health", h.Health)
}
