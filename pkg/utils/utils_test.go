package utils

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeBase64Image(t *testing.T) {
	u := New()
	raw := pngBytes(t, 4, 4)
	encoded := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{name: "raw base64", input: encoded, want: raw},
		{name: "data url", input: "data:image/png;base64," + encoded, want: raw},
		{name: "missing padding", input: base64.RawStdEncoding.EncodeToString(raw), want: raw},
		{name: "empty after prefix", input: "data:image/png;base64,", wantErr: true},
		{name: "not base64", input: "!!!not-base64***", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := u.DecodeBase64Image(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeImage(t *testing.T) {
	u := New()

	img, err := u.DecodeImage(pngBytes(t, 8, 6))
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())

	_, err = u.DecodeImage([]byte("definitely not an image"))
	assert.Error(t, err)

	_, err = u.DecodeImage(nil)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

// headerOnlyPNG is a truncated PNG whose IHDR claims w x h RGBA pixels.
func headerOnlyPNG(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := func(typ string, data []byte) {
		binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		buf.WriteString(typ)
		buf.Write(data)
		crc := crc32.NewIEEE()
		crc.Write([]byte(typ))
		crc.Write(data)
		binary.Write(&buf, binary.BigEndian, crc.Sum32())
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8
	ihdr[9] = 6

	chunk("IHDR", ihdr)
	chunk("IDAT", []byte{0x78, 0x9c})
	chunk("IEND", nil)
	return buf.Bytes()
}

func TestDecodeImageRejectsOversizedHeader(t *testing.T) {
	data := headerOnlyPNG(40000, 40000)
	require.Len(t, data, 59)

	_, err := New().DecodeImage(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.Contains(t, err.Error(), "40000x40000")
}

func TestDecodeImagePixelLimit(t *testing.T) {
	u := NewWithMaxPixels(100)

	_, err := u.DecodeImage(pngBytes(t, 11, 10))
	assert.ErrorIs(t, err, ErrImageTooLarge)

	img, err := u.DecodeImage(pngBytes(t, 10, 10))
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
}

func TestNewReadsMaxPixels(t *testing.T) {
	t.Setenv("MAX_IMAGE_PIXELS", "50")

	_, err := New().DecodeImage(pngBytes(t, 8, 8))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestPrepareFrameDownscales(t *testing.T) {
	u := New()
	src := image.NewRGBA(image.Rect(0, 0, 1280, 640))

	frame, scale, err := u.PrepareFrame(src, 640)
	require.NoError(t, err)

	assert.Equal(t, 640, frame.Width)
	assert.Equal(t, 320, frame.Height)
	assert.InDelta(t, 2.0, scale, 1e-9)

	decoded, err := u.DecodeImage(frame.JPEG)
	require.NoError(t, err)
	assert.Equal(t, 640, decoded.Bounds().Dx())
}

func TestPrepareFrameKeepsSmallImages(t *testing.T) {
	u := New()
	src := image.NewRGBA(image.Rect(0, 0, 320, 240))

	frame, scale, err := u.PrepareFrame(src, 640)
	require.NoError(t, err)

	assert.Equal(t, 320, frame.Width)
	assert.Equal(t, 240, frame.Height)
	assert.Equal(t, 1.0, scale)
}

func TestNewULIDFromTimestamp(t *testing.T) {
	u := New()
	id, err := u.NewULIDFromTimestamp(time.Now())
	require.NoError(t, err)
	assert.Len(t, id, 26)
}
