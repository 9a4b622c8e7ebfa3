package log

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// ContextWithCorrelationID stores id for WithCorrelationID, generating one when id is blank.
func ContextWithCorrelationID(ctx context.Context, id string) (context.Context, string) {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > 128 {
		id = GenerateCorrelationID()
	}
	return context.WithValue(ctx, CorrelatedIDKey, id), id
}

// LogRequest writes the access log line. Client errors log at warn and server
// errors at error; the user agent is cut to its product token.
func LogRequest(l *Logger, r *http.Request, status int, latency time.Duration, clientIP string) {
	args := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"latency_ms", latency.Milliseconds(),
		"remote_addr", clientIP,
		"user_agent", strings.Split(r.UserAgent(), "/")[0],
	}

	logger := l.WithCorrelationID(r.Context())
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("HTTP request", args...)
	case status >= http.StatusBadRequest:
		logger.Warn("HTTP request", args...)
	default:
		logger.Info("HTTP request", args...)
	}
}
