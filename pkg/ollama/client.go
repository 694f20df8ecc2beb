package ollama

import (
	"DroneDetect/internal/entity"
	"DroneDetect/pkg/vision"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/ollama/ollama/api"
	jsoniter "github.com/json-iterator/go"
)

// jsonFormat asks the model for a JSON object reply.
var jsonFormat = jsoniter.RawMessage(`"json"`)

const defaultTimeout = 120 * time.Second

// Client runs detection prompts against a local Ollama vision model.
type Client struct {
	client *api.Client
	model  string
}

// NewClient reads OLLAMA_URL (default http://localhost:11434) and OLLAMA_MODEL
// (default llava).
func NewClient() (*Client, error) {
	rawURL := os.Getenv("OLLAMA_URL")
	if rawURL == "" {
		rawURL = "http://localhost:11434"
	}

	model := os.Getenv("OLLAMA_MODEL")
	if model == "" {
		model = "llava"
	}

	return NewClientWithURL(rawURL, model, http.DefaultClient)
}

func NewClientWithURL(rawURL, model string, httpClient *http.Client) (*Client, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid URL %q: scheme and host are required", rawURL)
	}

	// drop any path such as /api/chat, the SDK adds its own
	baseURL := &url.URL{
		Scheme: parsedURL.Scheme,
		Host:   parsedURL.Host,
	}

	return &Client{
		client: api.NewClient(baseURL, httpClient),
		model:  model,
	}, nil
}

func (c *Client) Name() string {
	return "ollama"
}

func (c *Client) Detect(ctx context.Context, frame entity.Frame, opts entity.DetectOptions) ([]entity.Detection, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}

	streamFalse := false
	req := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: vision.DetectionPrompt,
				Images:  []api.ImageData{api.ImageData(frame.JPEG)},
			},
		},
		Stream: &streamFalse,
		Format: []byte(jsonFormat),
		Options: map[string]any{
			"temperature": 0,
		},
	}

	var responseContent string
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		responseContent += resp.Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat error: %w", err)
	}

	if responseContent == "" {
		return nil, errors.New("empty response from ollama")
	}

	return vision.ParseDetections(responseContent, frame, opts.Confidence)
}

func (c *Client) Close() error {
	return nil
}
