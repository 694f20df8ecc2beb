package detection

import (
	"DroneDetect/pkg/response"
	"net/http"
)

var (
	ErrNoImageData      = response.NewError(http.StatusBadRequest, "No image data received.")
	ErrInvalidImage     = response.NewError(http.StatusBadRequest, "Invalid image data. Could not decode image.")
	ErrPredictionFailed = response.NewError(http.StatusInternalServerError, "Model prediction failed.")
	ErrAnnotationFailed = response.NewError(http.StatusInternalServerError, "Could not render annotated image.")
)
