package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns a permissive policy: any origin, method and header.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{requestIDHeader, idempotencyReplayHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler
}
