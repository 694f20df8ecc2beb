package utils

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"
	"strings"
	"time"

	"DroneDetect/internal/entity"
	"github.com/disintegration/imaging"
	"github.com/oklog/ulid/v2"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels matches Pillow's MAX_IMAGE_PIXELS.
const DefaultMaxPixels = 89478485

var (
	ErrEmptyImage    = errors.New("empty image data")
	ErrImageTooLarge = errors.New("image exceeds pixel limit")
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	DecodeBase64Image(encoded string) ([]byte, error)
	DecodeImage(data []byte) (image.Image, error)
	PrepareFrame(img image.Image, maxSide int) (entity.Frame, float64, error)
	EncodeJPEG(img image.Image) ([]byte, error)
}

type utils struct {
	jpegQuality int
	maxPixels   int64
}

// New reads the decode limit from MAX_IMAGE_PIXELS (default DefaultMaxPixels).
func New() IUtils {
	maxPixels := int64(DefaultMaxPixels)
	if raw := os.Getenv("MAX_IMAGE_PIXELS"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			maxPixels = v
		}
	}
	return NewWithMaxPixels(maxPixels)
}

func NewWithMaxPixels(maxPixels int64) IUtils {
	return &utils{
		jpegQuality: 90,
		maxPixels:   maxPixels,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// DecodeBase64Image accepts raw base64 or a data URL such as
// "data:image/jpeg;base64,...". Anything before the first comma is dropped.
func (u *utils) DecodeBase64Image(encoded string) ([]byte, error) {
	if _, payload, found := strings.Cut(encoded, ","); found {
		encoded = payload
	}

	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, ErrEmptyImage
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// canvas captures sometimes arrive without padding
		raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
		if rawErr != nil {
			return nil, fmt.Errorf("decode base64: %w", err)
		}
		data = raw
	}

	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	return data, nil
}

// DecodeImage decodes JPEG, PNG, GIF or WebP bytes into a pixel buffer. The header is
// checked first: decoders allocate the full pixel buffer before reading any pixel data.
func (u *utils) DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("decode image: zero-sized image %dx%d", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > u.maxPixels {
		return nil, fmt.Errorf("decode image: %dx%d: %w", cfg.Width, cfg.Height, ErrImageTooLarge)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("decode image: zero-sized image %dx%d", bounds.Dx(), bounds.Dy())
	}

	return img, nil
}

// PrepareFrame downsizes img so its longest side is at most maxSide and encodes it as
// JPEG. The returned scale maps frame pixel coordinates back to the original image.
func (u *utils) PrepareFrame(img image.Image, maxSide int) (entity.Frame, float64, error) {
	bounds := img.Bounds()
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()

	scale := 1.0
	resized := img
	if maxSide > 0 && (origWidth > maxSide || origHeight > maxSide) {
		resized = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
		scale = float64(origWidth) / float64(resized.Bounds().Dx())
	}

	data, err := u.EncodeJPEG(resized)
	if err != nil {
		return entity.Frame{}, 0, err
	}

	return entity.Frame{
		JPEG:   data,
		Width:  resized.Bounds().Dx(),
		Height: resized.Bounds().Dy(),
	}, scale, nil
}

func (u *utils) EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(u.jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
