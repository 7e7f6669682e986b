package httphandler

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"
)

const (
	healthPath        = "/api/v1/health"
	reportsPathPrefix = "/api/v1/reports/"
)

// ApplyMiddleware wraps next so every request is access-logged and panics
// turn into a JSON 500. Panics are recovered inside the access log, so the
// logged status is the one the client received.
func ApplyMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	return accessLog(logger, recoverPanics(logger, next))
}

// responseRecorder captures the status code and body size of a response.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (rr *responseRecorder) WriteHeader(status int) {
	if rr.wroteHeader {
		return
	}
	rr.status = status
	rr.wroteHeader = true
	rr.ResponseWriter.WriteHeader(status)
}

func (rr *responseRecorder) Write(p []byte) (int, error) {
	if !rr.wroteHeader {
		rr.WriteHeader(http.StatusOK)
	}
	n, err := rr.ResponseWriter.Write(p)
	rr.bytes += n
	return n, err
}

// accessLog logs one line per request. Server errors log at error level and
// client errors at warn; container health checks only show at debug. Report
// downloads also carry the requested format.
func accessLog(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rr, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rr.status,
			"bytes", rr.bytes,
			"duration", time.Since(start).Round(time.Microsecond),
		}
		if r.URL.RawQuery != "" {
			attrs = append(attrs, "query", r.URL.RawQuery)
		}
		if strings.HasPrefix(r.URL.Path, reportsPathPrefix) {
			format := r.URL.Query().Get("format")
			if format == "" {
				format = formatJSON
			}
			attrs = append(attrs, "format", format)
		}

		logger.Log(r.Context(), accessLevel(r.URL.Path, rr.status), "http request", attrs...)
	})
}

func accessLevel(path string, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	case path == healthPath:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// recoverPanics turns a handler panic into a logged stack trace and a JSON
// 500. When the handler already started its response, the partial response
// is left as is.
func recoverPanics(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			logger.Error("panic recovered",
				"panic", v,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			if rr, ok := w.(*responseRecorder); ok && rr.wroteHeader {
				return
			}
			writeError(w, http.StatusInternalServerError, "internal server error")
		}()

		next.ServeHTTP(w, r)
	})
}
