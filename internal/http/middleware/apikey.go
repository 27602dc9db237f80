package middleware

import (
	"crypto/subtle"
	"net/http"

	"go.uber.org/zap"
)

// AdminAPIKey guards destructive admin endpoints with a shared key carried in
// the X-API-Key header. With no key configured the endpoints are disabled
// entirely rather than left open.
func AdminAPIKey(apiKey string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				logger.Warn("admin endpoint called but no admin API key is configured",
					zap.String("path", r.URL.Path))
				forbidden(w)
				return
			}

			provided := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				logger.Warn("admin endpoint rejected, invalid API key",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				forbidden(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"type":"forbidden","title":"Forbidden","status":403,"detail":"Valid API key required"}`))
}
