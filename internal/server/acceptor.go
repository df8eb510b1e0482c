// Package server runs the accept loop that enrolls new TCP clients into the
// broadcast registry.
package server

import (
	"errors"
	"net"

	"linecast/internal/codec"
	"linecast/internal/metrics"
)

// acceptLoop blocks on the listener, registers every accepted connection, and
// spawns its receiver. A single failed accept is transient and logged; the
// loop ends only when the listener is closed during shutdown.
func (s *Server) acceptLoop(listener net.Listener) {
	for {
		nc, err := listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			metrics.AcceptErrors.Inc()
			s.logger.Warn("accept failed", "error", err)
			continue
		}

		c := newConn(s, nc, codec.NewWithLimit(nc, s.cfg.MaxMessageSize), "tcp")
		s.register(c)
	}
}
