// Package handlers implements the HTTP endpoints of the prediction API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/solubility-bench/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeAppError maps application errors to HTTP statuses.  5xx messages are
// masked; the original error is attached to the context for the logger.
func writeAppError(c *gin.Context, err error) {
	_ = c.Error(err)

	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	msg := err.Error()
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		code = errors.ErrCodeInternal
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Code: string(code), Message: msg})
}

//Personal.AI order the ending
