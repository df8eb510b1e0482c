// Package server constructs the linecast HTTP sidecar with helpers that apply
// sensible production defaults.
package server

import (
	"net/http"
	"time"
)

// newHTTPServer configures an HTTP server for the sidecar endpoints with
// production timeout values. Write timeout stays unset so WebSocket
// connections on /ws are not cut off mid-stream.
func newHTTPServer(handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
