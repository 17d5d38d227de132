package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"subjectswap_server/logger"
	"subjectswap_server/metrics"
)

// CorrelationIDHeader carries the request correlation id.
const CorrelationIDHeader = "X-Correlation-ID"

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Hijack lets websocket upgrades through the wrapper.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

// Logging logs every request and records its duration.
func Logging(log *logger.Logger) func(http.Handler) http.Handler {
	log = logger.OrGlobal(log)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			correlationID := r.Header.Get(CorrelationIDHeader)
			if correlationID == "" {
				correlationID = uuid.New().String()
			}

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			wrapped.Header().Set(CorrelationIDHeader, correlationID)

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			path := routeTemplate(r)
			metrics.RecordRequest(r.Method, path, strconv.Itoa(wrapped.statusCode), duration.Seconds())

			fields := []zap.Field{
				zap.String("correlation_id", correlationID),
				zap.String("method", r.Method),
				zap.String("path", path),
				zap.Int("status", wrapped.statusCode),
				zap.Int64("bytes", wrapped.written),
				zap.Duration("duration", duration),
			}

			switch {
			case wrapped.statusCode >= 500:
				log.Error("request completed", fields...)
			case wrapped.statusCode >= 400:
				log.Warn("request completed", fields...)
			default:
				log.Info("request completed", fields...)
			}
		})
	}
}

// routeTemplate keeps metric labels bounded by using the mux template.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}
