package gemini

import (
	"DroneDetect/internal/entity"
	"DroneDetect/pkg/vision"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type IGemini interface {
	Name() string
	Detect(ctx context.Context, frame entity.Frame, opts entity.DetectOptions) ([]entity.Detection, error)
	Close() error
}

type geminiClient struct {
	modelName string
	client    *genai.Client
}

func NewGeminiClient() (IGemini, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	modelName := os.Getenv("GEMINI_MODEL_NAME")
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &geminiClient{
		modelName: modelName,
		client:    client,
	}, nil
}

func (g *geminiClient) Name() string {
	return "gemini"
}

func (g *geminiClient) Detect(ctx context.Context, frame entity.Frame, opts entity.DetectOptions) ([]entity.Detection, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.ResponseMIMEType = "application/json"

	img := genai.ImageData("jpeg", frame.JPEG)
	res, err := model.GenerateContent(ctx, genai.Text(vision.DetectionPrompt), img)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("no response from Gemini API")
	}

	text, ok := res.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, errors.New("unexpected response format from Gemini API")
	}

	return vision.ParseDetections(string(text), frame, opts.Confidence)
}

func (g *geminiClient) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
