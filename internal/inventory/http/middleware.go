package http

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader   = "X-Request-ID"
	processTimeHeader = "X-Process-Time"
)

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Set(requestIDHeader, requestID)
		c.Next()
	}
}

// AccessLogMiddleware logs one line per request. Server errors are logged at
// error level, everything else at info.
func AccessLogMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		requestID, _ := c.Get(requestIDHeader)
		logger.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Int64("latency_ms", time.Since(start).Milliseconds()),
			slog.Any("request_id", requestID),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

// ProcessTimeMiddleware reports the handling time in seconds. The header is
// stamped just before the response headers are flushed.
func ProcessTimeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &timingWriter{ResponseWriter: c.Writer, start: time.Now()}
		c.Next()
	}
}

type timingWriter struct {
	gin.ResponseWriter
	start time.Time
}

func (w *timingWriter) stamp() {
	if !w.Written() {
		w.Header().Set(processTimeHeader, strconv.FormatFloat(time.Since(w.start).Seconds(), 'f', 6, 64))
	}
}

func (w *timingWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *timingWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *timingWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *timingWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}
