// Package server wires HTTP handlers into a ServeMux for the linecast
// application via routing helpers.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures and returns an HTTP ServeMux with all application
// routes: health check, WebSocket bridge, and Prometheus metrics.
func (s *Server) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.healthHandler)
	mux.Handle("/ws", s.webSocketHandler())
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
