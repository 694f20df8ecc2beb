// Package websocketPkg talks to a YOLO inference sidecar over a persistent websocket.
//
// The sidecar is dialed with the query parameters conf and imgsz. Every request is one
// binary message holding a JPEG frame, answered by one JSON message:
//
//	{"detections":[{"label":"bird","confidence":0.87,"box":[x1,y1,x2,y2]}],"error":""}
//
// Box coordinates are pixels of the frame that was sent.
package websocketPkg

import (
	"DroneDetect/internal/entity"
	"DroneDetect/pkg/log"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

const defaultYOLOURL = "ws://localhost:8000/api/v1/detect/ws"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrNotConnected = errors.New("yolo detection service not connected")

type IWebsocket interface {
	Name() string
	Detect(ctx context.Context, frame entity.Frame, opts entity.DetectOptions) ([]entity.Detection, error)
	IsConnected() bool
	Close() error
}

type webSocketClient struct {
	baseURL string

	conn     *websocket.Conn
	connOpts entity.DetectOptions
	mu       sync.Mutex

	// one frame in flight per connection
	reqMu sync.Mutex

	pingInterval     time.Duration
	readTimeout      time.Duration
	writeTimeout     time.Duration
	handshakeTimeout time.Duration
}

type yoloDetection struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Box        []float64 `json:"box"`
}

type yoloResponse struct {
	Detections []yoloDetection `json:"detections"`
	Error      string          `json:"error,omitempty"`
}

// NewYOLOWebSocketClient reads the sidecar address from YOLO_WS_URL. The connection is
// dialed on the first Detect call and re-dialed after any failure.
func NewYOLOWebSocketClient() IWebsocket {
	baseURL := os.Getenv("YOLO_WS_URL")
	if baseURL == "" {
		baseURL = defaultYOLOURL
	}
	return NewWithURL(baseURL)
}

func NewWithURL(baseURL string) IWebsocket {
	return &webSocketClient{
		baseURL:          baseURL,
		pingInterval:     30 * time.Second,
		readTimeout:      10 * time.Second,
		writeTimeout:     5 * time.Second,
		handshakeTimeout: 10 * time.Second,
	}
}

func (c *webSocketClient) Name() string {
	return "yolo"
}

func (c *webSocketClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil
}

func (c *webSocketClient) reconnectLocked(opts entity.DetectOptions) error {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	target, err := c.dialURL(opts)
	if err != nil {
		return err
	}

	log.Info(log.Fields{"url": target}, "Connecting to YOLO detection service")

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = c.handshakeTimeout

	conn, _, err := dialer.Dial(target, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", target, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			log.Warn(log.Fields{"error": err.Error()}, "Error sending pong to YOLO service")
		}
		return nil
	})

	c.conn = conn
	c.connOpts = opts

	go c.keepAlive(conn)

	return nil
}

func (c *webSocketClient) dialURL(opts entity.DetectOptions) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid YOLO service URL %q: %w", c.baseURL, err)
	}

	q := u.Query()
	if opts.Confidence > 0 {
		q.Set("conf", strconv.FormatFloat(opts.Confidence, 'f', -1, 64))
	}
	if opts.ImageSize > 0 {
		q.Set("imgsz", strconv.Itoa(opts.ImageSize))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (c *webSocketClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *webSocketClient) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if c.conn != conn {
			c.mu.Unlock()
			return
		}

		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout))
		if err != nil {
			log.Warn(log.Fields{"error": err.Error()}, "Ping failed for YOLO service, marking connection as dead")
			c.conn = nil
			conn.Close()
			c.mu.Unlock()
			return
		}

		c.mu.Unlock()
	}
}

// getConnection returns the live connection, dialing a new one when there is none or
// when it was opened with different options.
func (c *webSocketClient) getConnection(opts entity.DetectOptions) (*websocket.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && c.connOpts == opts {
		return c.conn, nil
	}

	if err := c.reconnectLocked(opts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConnected, err)
	}

	return c.conn, nil
}

func (c *webSocketClient) drop(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == conn {
		c.conn = nil
	}
	conn.Close()
}

func (c *webSocketClient) Detect(ctx context.Context, frame entity.Frame, opts entity.DetectOptions) ([]entity.Detection, error) {
	c.reqMu.Lock()
	defer c.reqMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := c.getConnection(opts)
	if err != nil {
		return nil, err
	}

	writeDeadline := time.Now().Add(c.writeTimeout)
	readDeadline := time.Now().Add(c.readTimeout)
	if d, ok := ctx.Deadline(); ok {
		if d.Before(writeDeadline) {
			writeDeadline = d
		}
		if d.Before(readDeadline) {
			readDeadline = d
		}
	}

	if err := conn.SetWriteDeadline(writeDeadline); err != nil {
		c.drop(conn)
		return nil, fmt.Errorf("error setting write deadline: %w", err)
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, frame.JPEG); err != nil {
		c.drop(conn)
		return nil, fmt.Errorf("error sending frame to YOLO service: %w", err)
	}

	if err := conn.SetReadDeadline(readDeadline); err != nil {
		c.drop(conn)
		return nil, fmt.Errorf("error setting read deadline: %w", err)
	}

	_, message, err := conn.ReadMessage()
	if err != nil {
		c.drop(conn)
		return nil, fmt.Errorf("error reading YOLO response: %w", err)
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	return parseResponse(message)
}

func parseResponse(message []byte) ([]entity.Detection, error) {
	var result yoloResponse
	if err := json.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("error unmarshaling YOLO response: %w", err)
	}

	if result.Error != "" {
		return nil, fmt.Errorf("yolo service error: %s", result.Error)
	}

	detections := make([]entity.Detection, 0, len(result.Detections))
	for _, d := range result.Detections {
		det := entity.Detection{
			Label:      d.Label,
			Confidence: d.Confidence,
		}
		if len(d.Box) == 4 {
			det.Box = entity.BoundingBox{X1: d.Box[0], Y1: d.Box[1], X2: d.Box[2], Y2: d.Box[3]}
		}
		detections = append(detections, det)
	}

	return detections, nil
}
