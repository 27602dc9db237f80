package middleware

import (
	"net/http"

	"github.com/dealbridge/negotiation-api/internal/config"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// CORS returns a CORS middleware configured from the application config.
// With no origins configured, development allows all origins and every other
// environment denies all cross-origin requests.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	allowAll := func(r *http.Request, origin string) bool {
		return origin != ""
	}

	switch {
	case containsWildcard(cfg.AllowedOrigins):
		if environment != "development" && environment != "local" {
			logger.Warn("CORS configured with wildcard origin outside development",
				zap.String("environment", environment))
		}
		options.AllowOriginFunc = allowAll

	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS configured with explicit origins",
			zap.Strings("origins", cfg.AllowedOrigins))

	case environment == "development" || environment == "local" || environment == "":
		options.AllowOriginFunc = allowAll
		logger.Info("CORS allowing all origins in development mode")

	default:
		// empty AllowedOrigins would default to "*", so deny explicitly
		options.AllowOriginFunc = func(r *http.Request, origin string) bool {
			return false
		}
		logger.Warn("CORS has no allowed origins, denying all cross-origin requests",
			zap.String("environment", environment))
	}

	return cors.Handler(options)
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
