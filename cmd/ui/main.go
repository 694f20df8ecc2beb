package main

import (
	"DroneDetect/internal/config"
	"DroneDetect/pkg/log"
	"github.com/joho/godotenv"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Serves only the browser page; frames go to the API at API_BASE_URL.
func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil {
		logger.Warnf("No .env file loaded, using environment: %v", err)
	}

	apiBase := config.GetEnv("API_BASE_URL", "http://localhost:5000")

	server, err := config.NewServer(
		config.WithFiber(config.NewFiber(logger)),
		config.WithLogger(logger),
		config.WithMiddleware(),
		config.WithUI(apiBase),
	)
	if err != nil {
		logger.Fatal(err)
	}

	if err := server.RegisterHandler(); err != nil {
		logger.Fatal(err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(config.GetEnv("UI_PORT", "8080")); err != nil {
			logger.Fatalf("Error starting UI server: %v", err)
		}
	}()

	logger.WithField("api_base", apiBase).Info("UI server started successfully")

	<-sigChan
	logger.Info("Shutting down UI server...")

	if err := server.Shutdown(5 * time.Second); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
