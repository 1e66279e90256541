// errors.go - Structured error handling for API responses
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIError is a failure that serializes as {"error": "..."} with a 400-class
// status. The message is meant for direct display to the end user.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// NewBadRequestError creates a 400 Bad Request error.
func NewBadRequestError(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message}
}

// NewUnauthorizedError creates a 401 Unauthorized error.
func NewUnauthorizedError(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: message}
}

// NewNotFoundError creates a 404 Not Found error.
func NewNotFoundError(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Message: message}
}

// ErrorHandler is the central echo error handler. Unexpected failures are
// reported as a 400-class error carrying the error's description; nothing in
// this pipeline retries.
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError

	switch e := err.(type) {
	case *APIError:
		apiErr = e
	case *echo.HTTPError:
		apiErr = &APIError{
			Status:  e.Code,
			Message: http.StatusText(e.Code),
		}
		if msg, ok := e.Message.(string); ok {
			apiErr.Message = msg
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusBadRequest,
			Message: "Processing error: " + err.Error(),
		}
	}

	c.JSON(apiErr.Status, apiErr)
}
