package detector

import (
	"DroneDetect/internal/entity"
	"DroneDetect/pkg/gemini"
	"DroneDetect/pkg/ollama"
	"DroneDetect/pkg/openai"
	websocketPkg "DroneDetect/pkg/websocket"
	"fmt"
	"golang.org/x/net/context"
	"os"
	"strings"
)

const (
	BackendYOLO   = "yolo"
	BackendGemini = "gemini"
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
)

// Detector is a pretrained object-detection model living outside this process.
type Detector interface {
	Name() string
	Detect(ctx context.Context, frame entity.Frame, opts entity.DetectOptions) ([]entity.Detection, error)
	Close() error
}

// New builds the backend named by DETECTOR_BACKEND (yolo when unset).
func New() (Detector, error) {
	backend := strings.ToLower(strings.TrimSpace(os.Getenv("DETECTOR_BACKEND")))
	if backend == "" {
		backend = BackendYOLO
	}

	switch backend {
	case BackendYOLO:
		return websocketPkg.NewYOLOWebSocketClient(), nil
	case BackendGemini:
		return gemini.NewGeminiClient()
	case BackendOllama:
		return ollama.NewClient()
	case BackendOpenAI:
		return openai.NewChatGPT()
	default:
		return nil, fmt.Errorf("unknown detector backend %q", backend)
	}
}
