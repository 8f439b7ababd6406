package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// RequestLogger writes one log entry per request.
func RequestLogger(logger log.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				entry := logger.WithFields(log.Fields{
					"method":      r.Method,
					"path":        r.URL.Path,
					"status":      ww.Status(),
					"bytes":       ww.BytesWritten(),
					"duration_ms": time.Since(start).Milliseconds(),
					"request_id":  chimiddleware.GetReqID(r.Context()),
				})
				if userID, ok := UserIDFromContext(r.Context()); ok {
					entry = entry.WithField("user_id", userID)
				}
				switch {
				case ww.Status() >= http.StatusInternalServerError:
					entry.Error("request")
				case ww.Status() >= http.StatusBadRequest:
					entry.Warn("request")
				default:
					entry.Info("request")
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
