package middleware

import (
	"net/http"

	"megacrm-backend/internal/config"

	"github.com/rs/cors"
)

// NewCORS builds the CORS handler from server.cors_* settings. The request id
// and download filename headers are exposed to the browser UI.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CorsAllowedOrigins,
		AllowedMethods:   cfg.Server.CorsAllowedMethods,
		AllowedHeaders:   cfg.Server.CorsAllowedHeaders,
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return c.Handler
}
