package httpmw

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Srinivas-559/chat-app/pkg/logger"

	middlewareChi "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs one line per request with status, duration, and any
// trace attrs present on the context.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middlewareChi.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int64("dur_ms", time.Since(start).Milliseconds()),
		}
		attrs = append(attrs, logger.AttrsFromCtx(r.Context())...)
		slog.LogAttrs(r.Context(), slog.LevelInfo, "http request", attrs...)
	})
}
