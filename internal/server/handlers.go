// Package server exposes the HTTP handlers: health check and the WebSocket
// bridge that enrolls browser clients into the same broadcast domain as TCP
// clients.
package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

// webSocketHandler returns the handler that upgrades HTTP requests and
// registers the resulting connection. WebSocket clients and TCP clients share
// one registry, so every message reaches both populations.
func (s *Server) webSocketHandler() http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.origins.check,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Warn("websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
			return
		}

		conn.SetReadLimit(int64(s.cfg.MaxMessageSize))
		c := newConn(s, conn, &wsCodec{conn: conn}, "websocket")
		s.register(c)
	}
}

// healthHandler provides a simple health check endpoint that returns server status.
func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "linecast server is running, %d clients connected\n", s.registry.Len())
}

// wsCodec frames messages as WebSocket text frames, satisfying the same codec
// contract as the newline-delimited TCP framing.
type wsCodec struct {
	conn *websocket.Conn
}

func (c *wsCodec) Send(text string) error {
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// Receive blocks for the next text frame. Non-text frames are skipped; the
// gorilla library handles control frames internally.
func (c *wsCodec) Receive() (string, error) {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if messageType != websocket.TextMessage {
			continue
		}
		return string(data), nil
	}
}

// isNormalWebSocketClose reports whether a read error is an expected close
// handshake rather than a transport fault.
func isNormalWebSocketClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure)
}
