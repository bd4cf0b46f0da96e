// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradeinlabs/phoneworth/pkg/errors"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError translates an application error into its HTTP shape.  5xx
// causes are masked; their detail belongs in the logs, not the response.
func respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	resp := ErrorResponse{
		Code:    string(errors.GetCode(err)),
		Message: err.Error(),
	}
	if status >= http.StatusInternalServerError {
		resp.Message = "internal server error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// respondValidation is a shorthand for request-shape complaints.
func respondValidation(c *gin.Context, msg string) {
	respondError(c, errors.Validation(msg))
}
