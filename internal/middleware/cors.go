package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns a middleware for the allowed origins.
// "*" allows any origin, without credentials. An empty list rejects every cross-origin request.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Accept", "Origin", requestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	origins := make([]string, 0, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			origins = nil
			break
		}
		if o != "" {
			origins = append(origins, o)
		}
	}

	switch {
	case cfg.AllowAllOrigins:
	case len(origins) > 0:
		cfg.AllowOrigins = origins
	default:
		cfg.AllowOriginFunc = func(string) bool { return false }
	}

	return cors.New(cfg)
}
