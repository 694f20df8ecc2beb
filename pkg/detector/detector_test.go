package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsBackend(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	t.Setenv("DETECTOR_BACKEND", "")
	d, err := New()
	require.NoError(t, err)
	assert.Equal(t, BackendYOLO, d.Name())
	require.NoError(t, d.Close())

	t.Setenv("DETECTOR_BACKEND", "Ollama")
	d, err = New()
	require.NoError(t, err)
	assert.Equal(t, BackendOllama, d.Name())

	t.Setenv("DETECTOR_BACKEND", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	_, err = New()
	assert.Error(t, err)

	t.Setenv("DETECTOR_BACKEND", "tflite")
	_, err = New()
	assert.EqualError(t, err, `unknown detector backend "tflite"`)
}
