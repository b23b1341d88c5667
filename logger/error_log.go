package logger

import (
	"context"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorLog contains structured information about an error occurrence
type ErrorLog struct {
	Timestamp  time.Time              `json:"timestamp"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code,omitempty"`
	RequestID  string                 `json:"request_id,omitempty"`
	Path       string                 `json:"path,omitempty"`
	Method     string                 `json:"method,omitempty"`
	IPAddress  string                 `json:"ip_address,omitempty"`
	StackTrace string                 `json:"stack_trace,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// LogError logs a detailed error with contextual information
func LogError(ctx context.Context, err error, message string, metadata map[string]interface{}) {
	errorLog := ErrorLog{
		Timestamp: time.Now().UTC(),
		Message:   message,
		Metadata:  metadata,
	}

	if !isProduction() {
		errorLog.StackTrace = getStackTrace(3)
	}

	if ginCtx, ok := ctx.(*gin.Context); ok && ginCtx.Request != nil {
		errorLog.RequestID = ginCtx.GetString("request_id")
		errorLog.Path = ginCtx.Request.URL.Path
		errorLog.Method = ginCtx.Request.Method
		errorLog.IPAddress = ginCtx.ClientIP()
		errorLog.StatusCode = ginCtx.Writer.Status()
	}

	fields := []zap.Field{zap.Error(err)}

	if errorLog.RequestID != "" {
		fields = append(fields, zap.String("request_id", errorLog.RequestID))
	}
	if errorLog.Path != "" {
		fields = append(fields, zap.String("path", errorLog.Path))
		fields = append(fields, zap.String("method", errorLog.Method))
	}
	if errorLog.IPAddress != "" {
		fields = append(fields, zap.String("ip_address", errorLog.IPAddress))
	}
	if errorLog.StackTrace != "" {
		fields = append(fields, zap.String("stack_trace", errorLog.StackTrace))
	}

	for k, v := range metadata {
		fields = append(fields, zap.Any(k, v))
	}

	GetLogger().Desugar().Error(message, fields...)
}

// LogHTTPError logs an HTTP request error with context from a gin.Context
func LogHTTPError(c *gin.Context, err error, statusCode int, message string) {
	metadata := map[string]interface{}{
		"status_code": statusCode,
		"client_ip":   c.ClientIP(),
		"headers":     FilterSensitiveHeaders(c.Request.Header),
	}

	LogError(c, err, message, metadata)
}

// getStackTrace captures a stack trace starting from the specified skip level
func getStackTrace(skip int) string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var builder strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.Function, "runtime.") {
			builder.WriteString(frame.Function)
			builder.WriteString("\n\t")
			builder.WriteString(frame.File)
			builder.WriteString(":")
			builder.WriteString(strconv.Itoa(frame.Line))
			builder.WriteString("\n")
		}
		if !more {
			break
		}
	}

	return builder.String()
}

// FilterSensitiveHeaders redacts credentials before headers are logged.
// The admin bearer token always travels in Authorization, so it is never written out.
func FilterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string)

	for name, values := range headers {
		lower := strings.ToLower(name)
		if strings.EqualFold(name, "Authorization") ||
			strings.EqualFold(name, "Cookie") ||
			strings.Contains(lower, "token") ||
			strings.Contains(lower, "key") ||
			strings.Contains(lower, "secret") {
			filtered[name] = "[REDACTED]"
			continue
		}

		if len(values) > 0 {
			filtered[name] = values[0]
		}
	}

	return filtered
}
