package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"billing-backend/internal/timeutil"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

const requestIDKey contextKey = "request_id"
const requestInfoKey contextKey = "request_info"

// requestInfo is filled in by inner middleware (Authenticate) so the outer
// logger can report who made the request.
type requestInfo struct {
	userID int
}

// RequestLog is one access log line.
type RequestLog struct {
	Time         time.Time
	RequestID    string
	Method       string
	Path         string
	StatusCode   int
	DurationMs   float64
	ResponseSize int
	UserID       int
	IPAddress    string
	UserAgent    string
}

// RequestLogger assigns request ids and writes access logs asynchronously
type RequestLogger struct {
	logger  *log.Logger
	logChan chan *RequestLog
	done    chan struct{}
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// NewRequestLogger starts the background writer. A nil logger writes to the
// standard logger.
func NewRequestLogger(logger *log.Logger) *RequestLogger {
	if logger == nil {
		logger = log.Default()
	}
	m := &RequestLogger{
		logger:  logger,
		logChan: make(chan *RequestLog, 1000),
		done:    make(chan struct{}),
	}

	go m.asyncLogWriter()

	return m
}

func (m *RequestLogger) asyncLogWriter() {
	defer close(m.done)
	for entry := range m.logChan {
		m.logger.Printf("[HTTP] %s %s %s %d %.1fms %dB user=%d ip=%s",
			entry.RequestID, entry.Method, entry.Path, entry.StatusCode,
			entry.DurationMs, entry.ResponseSize, entry.UserID, entry.IPAddress)
	}
}

// Handler returns the middleware handler
func (m *RequestLogger) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		info := &requestInfo{}
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = context.WithValue(ctx, requestInfoKey, info)
		r = r.WithContext(ctx)

		if shouldSkipLogging(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := timeutil.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		entry := &RequestLog{
			Time:         timeutil.Now(),
			RequestID:    requestID,
			Method:       r.Method,
			Path:         sanitizePath(r.URL.Path),
			StatusCode:   wrapped.statusCode,
			DurationMs:   float64(time.Since(start).Microseconds()) / 1000.0,
			ResponseSize: wrapped.bytesWritten,
			UserID:       info.userID,
			IPAddress:    getClientIP(r),
			UserAgent:    r.UserAgent(),
		}

		// Non-blocking; a full buffer drops the line
		select {
		case m.logChan <- entry:
		default:
			log.Printf("[HTTP] Log buffer full, dropping log entry for %s", r.URL.Path)
		}
	})
}

// Close flushes pending log lines
func (m *RequestLogger) Close() {
	close(m.logChan)
	<-m.done
}

// GetRequestID returns the id assigned by RequestLogger.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// shouldSkipLogging returns true for paths that shouldn't be logged
func shouldSkipLogging(path string) bool {
	skipPaths := []string{
		"/health",
		"/metrics",
		"/ws",
		"/favicon.ico",
	}

	for _, skip := range skipPaths {
		if strings.HasPrefix(path, skip) {
			return true
		}
	}

	return false
}

// sanitizePath removes sensitive data from paths
func sanitizePath(path string) string {
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 500 {
		path = path[:500]
	}
	return path
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (for proxies/load balancers)
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}

	return ip
}

func writeJSONError(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": code})
}
