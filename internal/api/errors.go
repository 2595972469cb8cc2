package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/auth"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/service"
	"github.com/0xkrishu/meal-snap-ai-guide/internal/storage"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func abort(c *gin.Context, status int, message string, err error) {
	body := errorBody{Error: message}
	if err != nil {
		body.Details = err.Error()
		c.Error(err)
	}
	c.AbortWithStatusJSON(status, body)
}

// bindStatus maps a request body decode failure to its HTTP status.
func bindStatus(err error) int {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// statusFor maps service errors to HTTP statuses. Upstream vision failures,
// including an exhausted rate limit and a missing API key, fall through to
// 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrMissingImageURL):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidEmail):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
