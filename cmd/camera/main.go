package main

import (
	detectionService "DroneDetect/internal/api/detection/service"
	"DroneDetect/internal/config"
	"DroneDetect/internal/dashboard"
	"DroneDetect/pkg/annotate"
	"DroneDetect/pkg/capture"
	"DroneDetect/pkg/detector"
	"DroneDetect/pkg/log"
	"DroneDetect/pkg/utils"
	"context"
	"github.com/joho/godotenv"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Runs the model against a local camera and shows the annotated feed.
func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil {
		logger.Warnf("No .env file loaded, using environment: %v", err)
	}

	det, err := detector.New()
	if err != nil {
		logger.Fatalf("Failed to create detector: %v", err)
	}

	utilsInstance := utils.New()
	timeout := config.GetEnvDuration("DETECTION_TIMEOUT", 10*time.Second)
	ds := detectionService.NewDetectionService(logger, det, utilsInstance, annotate.New(), detectionService.ConfigFromEnv())

	board, err := dashboard.New(
		logger,
		capture.New(640, 480),
		ds,
		utilsInstance,
		config.GetEnvDuration("CAMERA_INTERVAL", 1500*time.Millisecond),
		timeout,
	)
	if err != nil {
		logger.Fatal(err)
	}
	board.SetRunning(config.GetEnvBool("CAMERA_AUTOSTART", false))

	server, err := config.NewServer(
		config.WithFiber(config.NewFiber(logger)),
		config.WithLogger(logger),
		config.WithMiddleware(),
		config.WithDetector(det),
		config.WithHandler(board),
	)
	if err != nil {
		logger.Fatal(err)
	}

	if err := server.RegisterHandler(); err != nil {
		logger.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go board.Run(ctx)

	go func() {
		if err := server.Run(config.GetEnv("CAMERA_PORT", "8501")); err != nil {
			logger.Fatalf("Error starting camera dashboard: %v", err)
		}
	}()

	logger.Info("Camera dashboard started successfully")

	<-ctx.Done()
	logger.Info("Shutting down camera dashboard...")

	if err := server.Shutdown(5 * time.Second); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
