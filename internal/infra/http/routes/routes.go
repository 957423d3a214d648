// Package routes registers all HTTP routes for the API.
package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	infrahttp "github.com/repoguard/api/internal/infra/http"
	"github.com/repoguard/api/internal/infra/http/handler"
	"github.com/repoguard/api/internal/infra/websocket"
)

// Router is an alias to the http package's Router interface.
type Router = infrahttp.Router

// Handlers holds all HTTP handlers for route registration.
type Handlers struct {
	Health    *handler.HealthHandler
	Scan      *handler.ScanHandler
	WebSocket *websocket.Handler
}

// Register wires all routes onto the router.
func Register(router Router, h Handlers) {
	registerHealthRoutes(router, h.Health)
	registerScanRoutes(router, h.Scan, h.WebSocket)
}

// registerHealthRoutes registers health check and metrics endpoints.
func registerHealthRoutes(router Router, h *handler.HealthHandler) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
}

// registerScanRoutes registers the scan stream endpoints.
func registerScanRoutes(router Router, h *handler.ScanHandler, ws *websocket.Handler) {
	router.Group("/api/v1", func(r Router) {
		r.POST("/scans", h.Stream)
		if ws != nil {
			r.GET("/scans/ws", ws.Serve)
		}
	})

	// Legacy alias kept for clients of the original deployment.
	router.POST("/scan_repository", h.Stream)
}
