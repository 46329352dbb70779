// Package server wires HTTP handlers into the application's request router.
package server

import (
	"net/http"

	"github.com/rs/cors"
)

// SetupRoutes configures the route table for the given API and wraps it with
// CORS for the browser-facing endpoints. The CORS allowlist reuses the
// configured WebSocket origins.
func SetupRoutes(api *API) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", api.Health)
	mux.HandleFunc("/healthz", api.Health)
	mux.HandleFunc("/ws", api.WebSocket)
	mux.HandleFunc("POST /api/rooms", api.CreateRoom)
	mux.HandleFunc("GET /api/rooms/{roomCode}/messages", api.RoomMessages)
	mux.Handle("/metrics", MetricsHandler())

	c := cors.New(cors.Options{
		AllowedOrigins: currentConfig().AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(mux)
}
