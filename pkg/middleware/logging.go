package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/ny-kanto/mall-api/pkg/logger"
)

// Headers carrying the request identifier. X-Request-ID is accepted from
// clients that do not know the correlation header.
const (
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderRequestID     = "X-Request-ID"
)

func requestID(r *http.Request) string {
	if id := r.Header.Get(HeaderCorrelationID); id != "" {
		return id
	}
	if id := r.Header.Get(HeaderRequestID); id != "" {
		return id
	}
	return uuid.NewString()
}

// RequestLogging assigns every request an identifier, echoes it back and
// writes one access log line once the handler returns. Server errors are
// logged at error level, client errors at warn.
func RequestLogging(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := requestID(r)
			ctx := logger.WithCorrelationID(r.Context(), id)
			w.Header().Set(HeaderCorrelationID, id)

			sw := wrap(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			status := sw.Status()
			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			l.LogAttrs(ctx, level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", r.URL.RawQuery),
				slog.Int("status", status),
				slog.Int("bytes", sw.bytes),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.String("correlation_id", id),
			)
		})
	}
}

// Recovery turns a panicking handler into a 500 response. http.ErrAbortHandler
// is re-raised so the server can drop the connection.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				l.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger stores a logger enriched from the request context, so
// handlers logging through logger.FromContext carry the request and trace
// identifiers. Mount it after RequestLogging and Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLoggerUser tags the request-scoped logger with the verified caller.
// Mount it after Auth or OptionalAuth.
func RequestLoggerUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := UserIDFromContext(ctx); id != "" {
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("user_id", id)))
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}
