// Package server manages individual client connections, handling the
// per-connection receive loop, rate limiting, and lifecycle control.
package server

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"linecast/internal/codec"
	"linecast/internal/logging"
	"linecast/internal/metrics"
)

const writeDeadline = 10 * time.Second

// messageCodec frames discrete text messages over a connection. The concrete
// framing (newline-delimited TCP, WebSocket text frames) is the collaborator's
// concern, not the server's.
type messageCodec interface {
	Send(text string) error
	Receive() (string, error)
}

// rawConn is the subset of a transport connection the server needs beside the
// codec. Both net.Conn and *websocket.Conn satisfy it.
type rawConn interface {
	Close() error
	SetWriteDeadline(t time.Time) error
	RemoteAddr() net.Addr
}

// Conn represents one accepted client in the broadcast system. The dedicated
// receiver goroutine is the only reader; the broadcaster is the only writer.
type Conn struct {
	id        uuid.UUID
	transport string
	raw       rawConn
	codec     messageCodec
	server    *Server
	limiter   *rateLimiter
	logger    *slog.Logger
	closeOnce sync.Once
}

func newConn(server *Server, raw rawConn, codec messageCodec, transport string) *Conn {
	id := uuid.New()
	cfg := server.cfg
	return &Conn{
		id:        id,
		transport: transport,
		raw:       raw,
		codec:     codec,
		server:    server,
		limiter:   newRateLimiter(cfg.RateLimit.Burst, cfg.RateLimit.RefillInterval, server.clock),
		logger:    logging.WithConn(id.String(), raw.RemoteAddr().String()).With("transport", transport),
	}
}

// ID returns the connection's stable identifier.
func (c *Conn) ID() string {
	return c.id.String()
}

// readLoop is the connection's receiver: it blocks on the codec, forwards
// every decoded message to the server's inbound queue, and terminates on the
// first transport error, evicting the connection from the registry.
func (c *Conn) readLoop() {
	for {
		text, err := c.codec.Receive()
		if err != nil {
			c.server.evict(c, evictReadError, err)
			return
		}

		// Payloads the line framing cannot carry are a sender problem;
		// discarding them here keeps the fan-out path free of per-payload
		// failures that would look like dead destinations.
		if err := codec.ValidatePayload(text); err != nil {
			metrics.InvalidMessages.Inc()
			c.logger.Warn("discarding unframeable message", "error", err)
			continue
		}

		if !c.limiter.allow() {
			metrics.RateLimitedMessages.Inc()
			c.logger.Warn("rate limit exceeded, discarding message",
				"burst", c.server.cfg.RateLimit.Burst,
				"refill_interval", c.server.cfg.RateLimit.RefillInterval)
			continue
		}

		metrics.MessagesReceived.Inc()
		select {
		case c.server.inbound <- Message{Origin: c, Text: text}:
		case <-c.server.ctx.Done():
			return
		}
	}
}

// send writes one message to the client under a write deadline. Only the
// broadcaster calls send, so no write lock is needed.
func (c *Conn) send(text string) error {
	if err := c.raw.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		return err
	}
	return c.codec.Send(text)
}

// close shuts the underlying transport down exactly once. A closed transport
// unblocks the receiver, whose eviction then becomes a no-op.
func (c *Conn) close() {
	c.closeOnce.Do(func() {
		if err := c.raw.Close(); err != nil && !isExpectedCloseError(err) {
			c.logger.Warn("error closing connection", "error", err)
		}
	})
}
