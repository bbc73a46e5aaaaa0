package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/commdesk/cts/internal/api/apierrors"
	"github.com/commdesk/cts/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondNotFound responds with a not found error
func respondNotFound(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusNotFound, apierrors.NewNotFoundError(message, details...))
}

// respondValidationError responds with a validation error
func respondValidationError(c *gin.Context, details ...string) {
	c.JSON(http.StatusUnprocessableEntity, apierrors.NewValidationError(details...))
}

// respondInternalError responds with an internal server error and logs it
func respondInternalError(c *gin.Context, err error, message string) {
	logger.Error(err, zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, apierrors.NewInternalError(message))
}

// statusForCode maps API error codes to HTTP status codes
func statusForCode(code apierrors.ErrorCode) int {
	switch code {
	case apierrors.ErrCodeBadRequest:
		return http.StatusBadRequest
	case apierrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apierrors.ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case apierrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apierrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apierrors.ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps an executor error onto the wire. Unexpected errors are
// logged and surface as opaque internal errors.
func respondError(c *gin.Context, err error, message string) {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		status := statusForCode(apiErr.Code)
		if status >= http.StatusInternalServerError {
			logger.Error(err, zap.String("path", c.Request.URL.Path))
		}
		c.JSON(status, apiErr)
		return
	}

	respondInternalError(c, err, message)
}
