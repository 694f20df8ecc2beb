package openai

import (
	"DroneDetect/internal/entity"
	"DroneDetect/pkg/vision"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"
)

type IChatGPT interface {
	Name() string
	Detect(ctx context.Context, frame entity.Frame, opts entity.DetectOptions) ([]entity.Detection, error)
	Close() error
}

type chatGPTService struct {
	client *openai.Client
	model  string
}

// NewChatGPT reads OPENAI_API_KEY, OPENAI_VISION_MODEL (default gpt-4o-mini) and an
// optional OPENAI_BASE_URL for OpenAI-compatible servers.
func NewChatGPT() (IChatGPT, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("openai API key is required")
	}

	model := os.Getenv("OPENAI_VISION_MODEL")
	if model == "" {
		model = openai.GPT4oMini
	}

	return NewWithBaseURL(apiKey, os.Getenv("OPENAI_BASE_URL"), model), nil
}

func NewWithBaseURL(apiKey, baseURL, model string) IChatGPT {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &chatGPTService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *chatGPTService) Name() string {
	return "openai"
}

func (c *chatGPTService) Detect(ctx context.Context, frame entity.Frame, opts entity.DetectOptions) ([]entity.Detection, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(frame.JPEG)

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type: openai.ChatMessagePartTypeText,
							Text: vision.DetectionPrompt,
						},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL:    dataURL,
								Detail: openai.ImageURLDetailAuto,
							},
						},
					},
				},
			},
			Temperature: 0,
			MaxTokens:   800,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("ChatGPT API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from ChatGPT")
	}

	return vision.ParseDetections(resp.Choices[0].Message.Content, frame, opts.Confidence)
}

func (c *chatGPTService) Close() error {
	return nil
}
