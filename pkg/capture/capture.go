package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

var ErrEmptyFrame = errors.New("camera returned an empty frame")

type ICamera interface {
	Grab(ctx context.Context) ([]byte, error)
	Device() string
}

// commandRunner runs a command and returns its stdout. Swapped out in tests.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

type ffmpegCamera struct {
	device string
	width  int
	height int
	run    commandRunner
}

// New grabs frames from CAMERA_DEVICE (default /dev/video0 on Linux, "0" on macOS,
// "Integrated Camera" on Windows) through ffmpeg.
func New(width, height int) ICamera {
	device := os.Getenv("CAMERA_DEVICE")
	if device == "" {
		device = defaultDevice()
	}

	return &ffmpegCamera{
		device: device,
		width:  width,
		height: height,
		run:    runFFmpeg,
	}
}

func defaultDevice() string {
	switch runtime.GOOS {
	case "windows":
		return "Integrated Camera"
	case "darwin":
		return "0"
	default:
		return "/dev/video0"
	}
}

func (c *ffmpegCamera) Device() string {
	return c.device
}

// Grab captures a single JPEG frame.
func (c *ffmpegCamera) Grab(ctx context.Context) ([]byte, error) {
	out, err := c.run(ctx, "ffmpeg", c.args()...)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrEmptyFrame
	}
	return out, nil
}

func (c *ffmpegCamera) args() []string {
	var input []string
	switch runtime.GOOS {
	case "windows":
		input = []string{"-f", "dshow", "-i", fmt.Sprintf("video=%s", c.device)}
	case "darwin":
		input = []string{"-f", "avfoundation", "-framerate", "30", "-i", c.device}
	default:
		input = []string{"-f", "v4l2", "-i", c.device}
	}

	args := append([]string{"-hide_banner", "-loglevel", "error"}, input...)
	if c.width > 0 && c.height > 0 {
		args = append(args, "-vf", fmt.Sprintf("scale=%d:%d", c.width, c.height))
	}

	return append(args,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-",
	)
}

func runFFmpeg(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg error: %w. Details: %s", err, strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}
