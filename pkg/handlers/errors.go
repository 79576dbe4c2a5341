package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"deckwatch/pkg/browser"
	"deckwatch/pkg/history"
	"deckwatch/pkg/logger"
	"deckwatch/pkg/monitor"
	"deckwatch/pkg/response"
)

var (
	ErrInvalidParam       = errors.New("invalid parameter")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrConflict           = errors.New("conflict")
)

// APIError carries the status and public message chosen by a handler.
type APIError struct {
	Code    int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

func NewAPIError(code int, message string, err error) *APIError {
	return &APIError{Code: code, Message: message, Err: err}
}

func NewBadRequestError(message string, err error) *APIError {
	return NewAPIError(http.StatusBadRequest, message, err)
}

func NewConflictError(message string, err error) *APIError {
	return NewAPIError(http.StatusConflict, message, err)
}

func NewServiceUnavailableError(message string, err error) *APIError {
	return NewAPIError(http.StatusServiceUnavailable, message, err)
}

// errorRules maps domain errors to responses, first match wins.
var errorRules = []struct {
	target  error
	status  int
	message string
}{
	{monitor.ErrCheckInProgress, http.StatusConflict, "A check is already in progress"},
	{browser.ErrProfileInUse, http.StatusConflict, "Browser profile is in use by another process"},
	{ErrConflict, http.StatusConflict, "Conflict"},
	{ErrInvalidParam, http.StatusBadRequest, "Invalid parameter"},
	{browser.ErrNavigationTimeout, http.StatusGatewayTimeout, "Store page did not load in time"},
	{browser.ErrNotConnected, http.StatusServiceUnavailable, "Browser not available"},
	{history.ErrDisabled, http.StatusServiceUnavailable, "Check history disabled"},
	{ErrServiceUnavailable, http.StatusServiceUnavailable, "Service unavailable"},
}

// HandleError writes the error response for err. Unknown errors become a
// bare 500 so internals are not leaked.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		response.WriteErrorResponse(c, apiErr.Code, apiErr.Message, apiErr.Err)
		return
	}
	for _, r := range errorRules {
		if errors.Is(err, r.target) {
			response.WriteErrorResponse(c, r.status, r.message, err)
			return
		}
	}

	logger.Error("unmapped handler error",
		zap.String("route", c.FullPath()),
		zap.Error(err))
	response.WriteErrorResponse(c, http.StatusInternalServerError, "Internal server error", nil)
}
