package response

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"deckwatch/pkg/logger"
)

// Error response field names
const (
	FieldError     = "error"
	FieldMessage   = "message"
	FieldCode      = "code"
	FieldDetails   = "details"
	FieldRequestID = "request_id"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "RequestID"

// WriteJSONResponse writes a JSON response with the given status code
func WriteJSONResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// WriteSuccess wraps data in the success envelope.
func WriteSuccess(c *gin.Context, statusCode int, data interface{}) {
	body := gin.H{
		"success":   true,
		"timestamp": time.Now().UTC(),
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(statusCode, body)
}

// WriteErrorResponse writes an error response in JSON format
func WriteErrorResponse(c *gin.Context, statusCode int, message string, err error) {
	errorResp := gin.H{
		FieldError:     true,
		FieldMessage:   message,
		FieldCode:      statusCode,
		FieldRequestID: c.GetString(RequestIDKey),
	}

	if err != nil {
		errorResp[FieldDetails] = err.Error()
		logger.Error("API error",
			zap.String("message", message),
			zap.Error(err),
			zap.Int("status_code", statusCode),
			zap.String("request_id", c.GetString(RequestIDKey)))
	}

	c.AbortWithStatusJSON(statusCode, errorResp)
}
