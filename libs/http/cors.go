package http

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// CORSConfig narrows which origins may call a locally served endpoint, like
// the OAuth callback listener.
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int
}

// CORSOptions translates the configuration for the rs/cors middleware.
func CORSOptions(config CORSConfig) cors.Options {
	return cors.Options{
		AllowOriginFunc: AllowedOrigin(config.AllowedOrigins),
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedHeaders: []string{"*"},
		MaxAge:         config.MaxAge,
	}
}

// AllowedOrigin builds the origin check. An empty list, or a leading "*",
// allows everything. Origins match regardless of their scheme.
func AllowedOrigin(allowedOrigins []string) func(origin string) bool {
	stripScheme := func(origin string) string {
		origin = strings.TrimPrefix(origin, "https://")
		return strings.TrimPrefix(origin, "http://")
	}
	return func(origin string) bool {
		if len(allowedOrigins) == 0 || allowedOrigins[0] == "*" {
			return true
		}
		for _, allowed := range allowedOrigins {
			if allowed == origin || stripScheme(allowed) == stripScheme(origin) {
				return true
			}
		}
		return false
	}
}
