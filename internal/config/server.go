package config

import (
	detectionHandler "DroneDetect/internal/api/detection/handler"
	detectionService "DroneDetect/internal/api/detection/service"
	uiHandler "DroneDetect/internal/api/ui/handler"
	"DroneDetect/internal/middleware"
	"DroneDetect/pkg/annotate"
	"DroneDetect/pkg/detector"
	"DroneDetect/pkg/utils"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"time"
)

type ServerOption func(*Server) error

type Server struct {
	engine           *fiber.App
	log              *logrus.Logger
	middleware       middleware.Middleware
	validator        *validator.Validate
	utils            utils.IUtils
	annotator        annotate.IAnnotator
	detector         detector.Detector
	detectionConfig  detectionService.Config
	detectionService detectionService.IDetectionService
	timeout          time.Duration
	serveUI          bool
	apiBase          string
	handlers         []handler
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{
		detectionConfig: detectionService.ConfigFromEnv(),
		timeout:         10 * time.Second,
	}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log)
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New()
	}
	if server.annotator == nil {
		server.annotator = annotate.New()
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func WithDetector(d detector.Detector) ServerOption {
	return func(s *Server) error {
		s.detector = d
		return nil
	}
}

// WithDetectorFromEnv builds the backend named by DETECTOR_BACKEND.
func WithDetectorFromEnv() ServerOption {
	return func(s *Server) error {
		d, err := detector.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create detector: %v", err)
			}
			return fmt.Errorf("failed to create detector: %w", err)
		}
		s.detector = d
		return nil
	}
}

func WithDetectionConfig(cfg detectionService.Config) ServerOption {
	return func(s *Server) error {
		s.detectionConfig = cfg
		return nil
	}
}

func WithTimeout(timeout time.Duration) ServerOption {
	return func(s *Server) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", timeout)
		}
		s.timeout = timeout
		return nil
	}
}

// WithUI serves the browser page at "/". apiBase is where the page sends frames;
// empty means the same origin.
func WithUI(apiBase string) ServerOption {
	return func(s *Server) error {
		s.serveUI = true
		s.apiBase = apiBase
		return nil
	}
}

// WithHandler mounts an extra route group, such as the camera dashboard.
func WithHandler(h handler) ServerOption {
	return func(s *Server) error {
		s.handlers = append(s.handlers, h)
		return nil
	}
}

// DetectionService is nil until RegisterHandler has run with a detector configured.
func (s *Server) DetectionService() detectionService.IDetectionService {
	return s.detectionService
}

func (s *Server) RegisterHandler() error {
	s.setupMiddleware()

	if s.detector != nil {
		s.detectionService = detectionService.NewDetectionService(s.log, s.detector, s.utils, s.annotator, s.detectionConfig)
		detectionHandlers := detectionHandler.New(s.log, s.validator, s.middleware, s.detectionService, s.timeout)
		s.handlers = append(s.handlers, detectionHandlers)

		s.log.WithFields(logrus.Fields{
			"detector":   s.detector.Name(),
			"keywords":   s.detectionConfig.Keywords,
			"confidence": s.detectionConfig.Confidence,
			"image_size": s.detectionConfig.ImageSize,
		}).Info("Detection handlers registered")
	}

	if s.serveUI {
		uiHandlers, err := uiHandler.New(s.log, s.apiBase)
		if err != nil {
			return fmt.Errorf("failed to create ui handler: %w", err)
		}
		s.handlers = append(s.handlers, uiHandlers)
	}

	for _, h := range s.handlers {
		h.Start(s.engine)
	}

	return nil
}

func (s *Server) setupMiddleware() {
	s.engine.Use(recover.New())
	s.engine.Use(cors.New())
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
}

func (s *Server) Run(port string) error {
	if port == "" {
		port = "5000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

func (s *Server) Shutdown(timeout time.Duration) error {
	err := s.engine.ShutdownWithTimeout(timeout)

	if s.detector != nil {
		if closeErr := s.detector.Close(); closeErr != nil {
			s.log.Errorf("Failed to close detector: %v", closeErr)
		}
	}

	return err
}
