package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"deckwatch/pkg/response"
)

// quietPaths are polled by probes and never logged.
var quietPaths = map[string]struct{}{
	"/health":      {},
	"/favicon.ico": {},
}

// GinZapLogger logs one line per request. The level follows the status:
// 5xx error, 4xx warn, anything else debug.
func GinZapLogger(l *zap.Logger) gin.HandlerFunc {
	l = named(l, "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if skipAccessLog(path) {
			return
		}

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", c.GetString(response.RequestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if ce := l.Check(accessLevel(status), "request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func skipAccessLog(path string) bool {
	if _, ok := quietPaths[path]; ok {
		return true
	}
	// swagger UI assets; the index page itself is still logged
	return strings.HasPrefix(path, "/swagger/") && path != "/swagger/index.html"
}

func accessLevel(status int) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case status >= 400:
		return zapcore.WarnLevel
	default:
		return zapcore.DebugLevel
	}
}
