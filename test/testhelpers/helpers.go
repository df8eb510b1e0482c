// Package testhelpers provides common utilities and helper functions for
// testing the linecast server.
//
// It contains reusable test utilities shared across unit and integration
// tests: starting a fully wired server on ephemeral ports, and thin TCP and
// WebSocket clients speaking the line protocol.
package testhelpers

import (
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"linecast/internal/codec"
	"linecast/internal/server"
)

// DefaultRecvTimeout bounds how long test clients wait for a broadcast.
const DefaultRecvTimeout = 3 * time.Second

// StartServer starts a linecast server on ephemeral ports and registers its
// shutdown as test cleanup. mutate, when non-nil, adjusts the configuration
// before startup.
func StartServer(t *testing.T, mutate func(*server.Config)) *server.Server {
	t.Helper()

	cfg := server.NewConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.AllowedOrigins = []string{"*"}
	if mutate != nil {
		mutate(cfg)
	}

	srv := server.New(cfg)
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		_ = srv.Shutdown(5 * time.Second)
	})
	return srv
}

// WebSocketURL builds the ws:// URL of the server's bridge endpoint.
func WebSocketURL(t *testing.T, srv *server.Server) string {
	t.Helper()
	addr := srv.HTTPAddr()
	require.NotNil(t, addr, "server started without HTTP listener")
	return fmt.Sprintf("ws://%s/ws", addr.String())
}

// HTTPURL builds the http:// base URL of the server's sidecar.
func HTTPURL(t *testing.T, srv *server.Server) string {
	t.Helper()
	addr := srv.HTTPAddr()
	require.NotNil(t, addr, "server started without HTTP listener")
	return fmt.Sprintf("http://%s", addr.String())
}

// TCPClient is a minimal line-protocol client for integration tests.
type TCPClient struct {
	conn  net.Conn
	codec *codec.LineCodec
}

// DialTCP connects a TCPClient to the server's broadcast listener and
// registers its closure as test cleanup.
func DialTCP(t *testing.T, srv *server.Server) *TCPClient {
	t.Helper()

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	client := &TCPClient{conn: conn, codec: codec.New(conn)}
	t.Cleanup(client.Close)
	return client
}

// Send writes one message to the server.
func (c *TCPClient) Send(t *testing.T, text string) {
	t.Helper()
	require.NoError(t, c.codec.Send(text))
}

// Recv blocks for the next broadcast message, failing the test after timeout.
func (c *TCPClient) Recv(t *testing.T, timeout time.Duration) string {
	t.Helper()

	text, err := c.TryRecv(timeout)
	require.NoError(t, err, "expected a broadcast message")
	return text
}

// TryRecv blocks for the next broadcast message or reports the read error
// (including timeouts) without failing the test.
func (c *TCPClient) TryRecv(timeout time.Duration) (string, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", err
	}
	return c.codec.Receive()
}

// Close shuts the client connection down; safe to call more than once.
func (c *TCPClient) Close() {
	_ = c.conn.Close()
}

// WSClient is a minimal WebSocket client for bridge integration tests.
type WSClient struct {
	conn *websocket.Conn
}

// DialWS connects a WSClient to the server's /ws endpoint. The handshake
// carries the sidecar's own URL as Origin; the origin policy rejects
// origin-less requests even under a wildcard allow-list.
func DialWS(t *testing.T, srv *server.Server) *WSClient {
	t.Helper()

	header := http.Header{}
	header.Set("Origin", HTTPURL(t, srv))
	conn, resp, err := websocket.DefaultDialer.Dial(WebSocketURL(t, srv), header)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	require.NoError(t, err)
	client := &WSClient{conn: conn}
	t.Cleanup(client.Close)
	return client
}

// Send writes one text message to the server.
func (c *WSClient) Send(t *testing.T, text string) {
	t.Helper()
	require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, []byte(text)))
}

// Recv blocks for the next broadcast message, failing the test after timeout.
func (c *WSClient) Recv(t *testing.T, timeout time.Duration) string {
	t.Helper()

	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(timeout)))
	_, data, err := c.conn.ReadMessage()
	require.NoError(t, err, "expected a broadcast message")
	return string(data)
}

// Close shuts the client connection down; safe to call more than once.
func (c *WSClient) Close() {
	_ = c.conn.Close()
}

// WaitForClientCount polls until the server's registry reaches the expected
// population or the timeout expires.
func WaitForClientCount(t *testing.T, srv *server.Server, want int, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if srv.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("client count never reached %d (currently %d)", want, srv.ClientCount())
}

// DistinctMessages builds n distinct payloads with the given prefix.
func DistinctMessages(prefix string, n int) []string {
	msgs := make([]string, n)
	for i := range msgs {
		msgs[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	return msgs
}
