package middleware

import (
	"net/http"
	"time"

	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger loguea cada request con el logger de plataforma.
// Usa el request id de chi si está presente.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := map[string]any{
				"method":  r.Method,
				"path":    r.URL.Path,
				"status":  ww.Status(),
				"elapsed": time.Since(start).String(),
			}
			if reqID := chimw.GetReqID(r.Context()); reqID != "" {
				fields["request_id"] = reqID
			}

			log.Info("http request", fields)
		})
	}
}
