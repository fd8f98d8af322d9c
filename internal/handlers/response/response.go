// Package response writes JSON bodies shared by handlers and middleware.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mroshb/film_catalog/pkg/errors"
	"github.com/mroshb/film_catalog/pkg/logger"
)

// ErrorBody is returned for every failed request.
type ErrorBody struct {
	Message     string `json:"message"`
	Description string `json:"description"`
}

// Result wraps boolean toggle outcomes.
type Result struct {
	Result bool `json:"result"`
}

// VoteResult is returned by review vote endpoints.
type VoteResult struct {
	Result     bool  `json:"result"`
	Usefulness int64 `json:"usefulness"`
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code string) int {
	switch code {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeValidation:
		return http.StatusBadRequest
	case errors.ErrCodeConflict:
		return http.StatusConflict
	case errors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as an ErrorBody and aborts the chain. Internal details
// of 5xx errors are logged, not returned.
func Error(c *gin.Context, err error) {
	code := errors.CodeOf(err)
	status := StatusFor(code)

	description := errors.MessageOf(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", c.GetString("request_id"),
			"error", err,
		)
		description = "internal error"
	}

	c.AbortWithStatusJSON(status, ErrorBody{
		Message:     code,
		Description: description,
	})
}

func OK(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}
