package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger, her isteği tamamlandığında tek satır loglar.
// chi'nin RequestID middleware'inden SONRA takılmalıdır.
func RequestLogger(next http.Handler) http.Handler {
	log := slog.With("component", "http")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", chimw.GetReqID(r.Context()),
		}

		switch {
		case status >= 500:
			log.ErrorContext(r.Context(), "request completed", fields...)
		case status >= 400:
			log.WarnContext(r.Context(), "request completed", fields...)
		default:
			log.DebugContext(r.Context(), "request completed", fields...)
		}
	})
}
