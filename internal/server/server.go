// Package server implements the linecast broadcast server: a TCP acceptor, a
// per-connection receiver, and a single broadcaster fanning every message out
// to all registered connections.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"linecast/internal/logging"
	"linecast/internal/metrics"
)

const inboundQueueSize = 256

// Server owns the connection registry, the inbound message queue, and the
// lifecycle of the acceptor, receiver, and broadcaster goroutines.
type Server struct {
	cfg      *Config
	clock    clockwork.Clock
	registry *Registry
	inbound  chan Message
	origins  *originPolicy

	listener     net.Listener
	httpServer   *http.Server
	httpListener net.Listener

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger
}

// New creates a Server with the given configuration. The server does not bind
// any socket until Start is called.
func New(cfg *Config) *Server {
	if cfg == nil {
		cfg = NewConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:      cfg,
		clock:    clockwork.NewRealClock(),
		registry: NewRegistry(),
		inbound:  make(chan Message, inboundQueueSize),
		origins:  newOriginPolicy(cfg.AllowedOrigins),
		ctx:      ctx,
		cancel:   cancel,
		logger:   logging.Logger.With("component", "server"),
	}
}

// Start binds the TCP listener (and the HTTP sidecar when configured) and
// launches the acceptor and broadcaster goroutines. A bind failure is fatal
// and returned to the caller; Start does not block on serving.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.cfg.ListenAddr, err)
	}
	s.listener = listener
	s.logger.Info("broadcast listener started", "addr", listener.Addr().String())

	if s.cfg.HTTPAddr != "" {
		httpListener, err := net.Listen("tcp", s.cfg.HTTPAddr)
		if err != nil {
			_ = listener.Close()
			return fmt.Errorf("bind http %s: %w", s.cfg.HTTPAddr, err)
		}
		s.httpListener = httpListener
		s.httpServer = newHTTPServer(s.SetupRoutes())
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("http server stopped", "error", err)
			}
		}()
		s.logger.Info("http listener started", "addr", httpListener.Addr().String())
	}

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.broadcastLoop()
	}()
	go func() {
		defer s.wg.Done()
		s.acceptLoop(listener)
	}()

	return nil
}

// Addr returns the bound address of the TCP broadcast listener, or nil before
// Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// HTTPAddr returns the bound address of the HTTP sidecar, or nil when it is
// disabled or not yet started.
func (s *Server) HTTPAddr() net.Addr {
	if s.httpListener == nil {
		return nil
	}
	return s.httpListener.Addr()
}

// ClientCount returns the number of currently registered connections.
func (s *Server) ClientCount() int {
	return s.registry.Len()
}

// register enrolls a freshly accepted connection and launches its receiver.
// Connections that lose the race against shutdown are closed instead: the
// re-check after Add covers a cancellation landing between the first check
// and the insert, when Shutdown's closing sweep may already have run.
func (s *Server) register(c *Conn) {
	if s.ctx.Err() != nil {
		c.close()
		return
	}
	s.registry.Add(c)
	if s.ctx.Err() != nil {
		s.registry.Remove(c)
		c.close()
		return
	}
	metrics.ConnectionsAccepted.WithLabelValues(c.transport).Inc()
	metrics.OpenConnections.WithLabelValues(c.transport).Inc()
	c.logger.Info("client registered", "clients", s.registry.Len())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		c.readLoop()
	}()
}

// evict removes a connection from the registry and closes it. Losing the
// removal race to another evictor is fine; only the winner logs and counts.
func (s *Server) evict(c *Conn, cause string, err error) {
	if !s.registry.Remove(c) {
		c.close()
		return
	}
	metrics.Evictions.WithLabelValues(cause).Inc()
	metrics.OpenConnections.WithLabelValues(c.transport).Dec()

	if cause == evictReadError && isOrderlyDisconnect(err) {
		c.logger.Info("client disconnected", "clients", s.registry.Len())
	} else {
		c.logger.Warn("connection evicted", "cause", cause, "error", err, "clients", s.registry.Len())
	}
	c.close()
}

// Shutdown initiates graceful shutdown: it stops the listeners, cancels the
// loops, closes every registered connection, and waits for all goroutines to
// finish or the timeout to expire.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.logger.Info("initiating shutdown")
	s.cancel()

	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warn("http server shutdown", "error", err)
		}
	}

	for _, c := range s.registry.Snapshot() {
		if s.registry.Remove(c) {
			metrics.Evictions.WithLabelValues(evictShutdown).Inc()
			metrics.OpenConnections.WithLabelValues(c.transport).Dec()
		}
		c.close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("shutdown completed")
		return nil
	case <-time.After(timeout):
		s.logger.Warn("shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}

// isOrderlyDisconnect reports whether a read error is a normal remote close
// rather than a transport fault.
func isOrderlyDisconnect(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		isExpectedCloseError(err) ||
		isNormalWebSocketClose(err)
}
