package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andcook/andcook/backend/internal/apperror"
	"github.com/andcook/andcook/backend/internal/logging"
)

// ErrorResponse represents an error response. Details carries the underlying
// error text of a server error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler renders the last error attached with c.Error as JSON and turns
// panics into 500 responses. Server errors are logged and answered with a
// generic message plus the underlying error in details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if err, ok := r.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(r)
				}
				logging.Ctx(c.Request.Context()).Error().
					Interface("panic", r).
					Str("path", c.Request.URL.Path).
					Msg("recovered from panic")
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
						Error:   "Internal Server Error",
						Details: fmt.Sprint(r),
					})
				}
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := apperror.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			logging.Ctx(c.Request.Context()).Error().
				Err(err).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Msg("request failed")
			c.JSON(status, ErrorResponse{Error: "Internal Server Error", Details: err.Error()})
			return
		}
		c.JSON(status, ErrorResponse{Error: apperror.Message(err)})
	}
}

// abortWithError stops the chain and renders err immediately.
func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperror.HTTPStatus(err), ErrorResponse{Error: apperror.Message(err)})
}
