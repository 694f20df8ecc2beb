package detectionHandler

import (
	"DroneDetect/internal/api/detection"
	"DroneDetect/internal/middleware"
	contextPkg "DroneDetect/pkg/context"
	"DroneDetect/pkg/handlerUtil"
	"DroneDetect/pkg/log"
	"DroneDetect/pkg/response"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
	"time"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// handleWebSocket answers each frame with one detection summary. Binary messages are
// encoded images, text messages are DetectRequest JSON.
func (h *DetectionHandler) handleWebSocket(c *websocket.Conn) {
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)
	if requestID == "" {
		requestID = "unknown"
	}

	fields := log.Fields{"request_id": requestID, "path": "/ws"}
	h.log.WithFields(fields).Info("Detection WebSocket client connected")
	defer h.log.WithFields(fields).Info("Detection WebSocket client disconnected")

	errHandler := handlerUtil.New(h.log)

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(wsReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithFields(fields).Errorf("Detection WebSocket error: %v", err)
			}
			break
		}

		var payload interface{}

		result, err := h.processMessage(requestID, messageType, message)
		if err != nil {
			_, body := errHandler.Resolve(requestID, err, "/ws", "detect_frame")
			payload = body
		} else {
			payload = result
		}

		if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
			h.log.Errorf("Error setting write deadline: %v", err)
			break
		}

		if err := c.WriteJSON(payload); err != nil {
			h.log.Errorf("Error writing JSON response: %v", err)
			break
		}

		if err := c.SetWriteDeadline(time.Time{}); err != nil {
			h.log.Errorf("Error resetting write deadline: %v", err)
			break
		}
	}
}

func (h *DetectionHandler) processMessage(requestID string, messageType int, message []byte) (*detection.DetectResponse, error) {
	ctx, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), requestID), h.timeout)
	defer cancel()

	switch messageType {
	case websocket.BinaryMessage:
		if len(message) == 0 {
			return nil, detection.ErrNoImageData
		}
		return h.detectionService.DetectBytes(ctx, message)
	case websocket.TextMessage:
		var req detection.DetectRequest
		if err := json.Unmarshal(message, &req); err != nil {
			return nil, response.Wrap(detection.ErrNoImageData, err)
		}
		if err := h.validator.Struct(req); err != nil {
			return nil, response.Wrap(detection.ErrNoImageData, err)
		}
		return h.detectionService.DetectBase64(ctx, req.Image)
	default:
		h.log.Warnf("Received unexpected message type: %d", messageType)
		return nil, detection.ErrNoImageData
	}
}
