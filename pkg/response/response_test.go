package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsIdentity(t *testing.T) {
	sentinel := NewError(http.StatusBadRequest, "Invalid image data. Could not decode image.")

	wrapped := Wrap(sentinel, errors.New("illegal base64 data at input byte 4"))

	assert.ErrorIs(t, wrapped, sentinel)

	var respErr *Error
	require.True(t, errors.As(wrapped, &respErr))
	assert.Equal(t, http.StatusBadRequest, respErr.Code)
	assert.Equal(t, "illegal base64 data at input byte 4", respErr.Details)
	assert.Equal(t, "Invalid image data. Could not decode image.", wrapped.Error())
}

func TestIsDistinguishesCodes(t *testing.T) {
	a := NewError(http.StatusBadRequest, "boom")
	b := NewError(http.StatusInternalServerError, "boom")

	assert.False(t, errors.Is(a, b))
	assert.True(t, errors.Is(fmt.Errorf("context: %w", a), a))
}

func TestWrapNonResponseError(t *testing.T) {
	plain := errors.New("plain")
	assert.Same(t, plain, Wrap(plain, errors.New("cause")))
}
