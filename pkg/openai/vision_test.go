package openai

import (
	"DroneDetect/internal/entity"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Content []struct {
					Type     string `json:"type"`
					ImageURL struct {
						URL string `json:"url"`
					} `json:"image_url"`
				} `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		if assert.Len(t, body.Messages, 1) && assert.Len(t, body.Messages[0].Content, 2) {
			assert.True(t, strings.HasPrefix(body.Messages[0].Content[1].ImageURL.URL, "data:image/jpeg;base64,"))
		}

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}

		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  body.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			}},
		})
	}))
}

func TestDetect(t *testing.T) {
	server := chatServer(t, http.StatusOK,
		`{"objects":[{"label":"drone","confidence":0.8,"box":{"x1":0,"y1":0,"x2":0.5,"y2":0.5}},{"label":"cloud","confidence":0.1,"box":{"x1":0,"y1":0,"x2":1,"y2":1}}]}`)
	defer server.Close()

	client := NewWithBaseURL("test-key", server.URL+"/v1", "gpt-4o-mini")
	assert.Equal(t, "openai", client.Name())

	got, err := client.Detect(context.Background(), entity.Frame{JPEG: []byte{0xff, 0xd8}, Width: 200, Height: 100}, entity.DetectOptions{Confidence: 0.3})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "drone", got[0].Label)
	assert.Equal(t, entity.BoundingBox{X1: 0, Y1: 0, X2: 100, Y2: 50}, got[0].Box)
}

func TestDetectAPIError(t *testing.T) {
	server := chatServer(t, http.StatusInternalServerError, "")
	defer server.Close()

	client := NewWithBaseURL("test-key", server.URL+"/v1", "gpt-4o-mini")
	_, err := client.Detect(context.Background(), entity.Frame{JPEG: []byte{0xff}, Width: 10, Height: 10}, entity.DetectOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ChatGPT API error")
}

func TestNewChatGPTRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewChatGPT()
	assert.Error(t, err)
}
