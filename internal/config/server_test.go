package config

import (
	"DroneDetect/internal/entity"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

type fakeDetector struct {
	closed bool
}

func (f *fakeDetector) Name() string { return "fake" }

func (f *fakeDetector) Detect(context.Context, entity.Frame, entity.DetectOptions) ([]entity.Detection, error) {
	return nil, nil
}

func (f *fakeDetector) Close() error {
	f.closed = true
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNewServerRequiresFiberAndLogger(t *testing.T) {
	_, err := NewServer(WithLogger(quietLogger()))
	assert.EqualError(t, err, "fiber app is required")

	_, err = NewServer(WithFiber(NewFiber(quietLogger())))
	assert.EqualError(t, err, "logger is required")

	_, err = NewServer(WithMiddleware())
	assert.ErrorContains(t, err, "logger must be initialized before middleware")
}

func TestCombinedServerRoutes(t *testing.T) {
	logger := quietLogger()
	det := &fakeDetector{}

	srv, err := NewServer(
		WithFiber(NewFiber(logger)),
		WithLogger(logger),
		WithMiddleware(),
		WithDetector(det),
		WithTimeout(time.Second),
		WithUI(""),
	)
	require.NoError(t, err)
	require.NoError(t, srv.RegisterHandler())
	require.NotNil(t, srv.DetectionService())

	resp, err := srv.engine.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"ok","detector":"fake"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = srv.engine.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodOptions, "/detect", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err = srv.engine.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = srv.engine.Test(httptest.NewRequest(http.MethodPost, "/detect", strings.NewReader("")))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"No image data received."}`, string(body))

	resp, err = srv.engine.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"error"`)

	require.NoError(t, srv.Shutdown(time.Second))
	assert.True(t, det.closed)
}

func TestPageOnlyServer(t *testing.T) {
	logger := quietLogger()

	srv, err := NewServer(
		WithFiber(NewFiber(logger)),
		WithLogger(logger),
		WithUI("http://localhost:5000"),
	)
	require.NoError(t, err)
	require.NoError(t, srv.RegisterHandler())
	assert.Nil(t, srv.DetectionService())

	resp, err := srv.engine.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "localhost:5000")

	resp, err = srv.engine.Test(httptest.NewRequest(http.MethodPost, "/detect", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("DD_TEST_STR", "value")
	t.Setenv("DD_TEST_BOOL", "false")
	t.Setenv("DD_TEST_DUR", "1.5s")
	t.Setenv("DD_TEST_SECS", "10")
	t.Setenv("DD_TEST_BAD", "soon")

	assert.Equal(t, "value", GetEnv("DD_TEST_STR", "x"))
	assert.Equal(t, "x", GetEnv("DD_TEST_UNSET", "x"))
	assert.False(t, GetEnvBool("DD_TEST_BOOL", true))
	assert.True(t, GetEnvBool("DD_TEST_UNSET", true))
	assert.Equal(t, 1500*time.Millisecond, GetEnvDuration("DD_TEST_DUR", time.Second))
	assert.Equal(t, 10*time.Second, GetEnvDuration("DD_TEST_SECS", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("DD_TEST_BAD", time.Second))
}
