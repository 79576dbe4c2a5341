package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"deckwatch/pkg/models"
	"deckwatch/pkg/response"
)

// ErrorHandler turns errors attached with c.Error into a models.ErrorResponse
// when the handler wrote nothing itself. Only public errors expose their text.
func ErrorHandler(l *zap.Logger) gin.HandlerFunc {
	l = named(l, "http")
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}
		reqID := c.GetString(response.RequestIDKey)
		l.Error("request failed",
			zap.String("request_id", reqID),
			zap.String("route", c.FullPath()),
			zap.Error(last.Err))

		if c.Writer.Written() {
			return
		}
		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		body := models.ErrorResponse{
			Error:     true,
			Message:   http.StatusText(status),
			Code:      status,
			RequestID: reqID,
		}
		if last.IsType(gin.ErrorTypePublic) {
			body.Message = last.Error()
		}
		c.JSON(status, body)
	}
}

// Recovery answers 500 after a handler panic, keeping the browser session
// and watch loop alive.
func Recovery(l *zap.Logger) gin.HandlerFunc {
	l = named(l, "http")
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		reqID := c.GetString(response.RequestIDKey)
		l.Error("handler panicked",
			zap.Any("panic", recovered),
			zap.String("request_id", reqID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"))

		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     true,
			Message:   http.StatusText(http.StatusInternalServerError),
			Code:      http.StatusInternalServerError,
			RequestID: reqID,
		})
	})
}

func named(l *zap.Logger, name string) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.Named(name)
}
