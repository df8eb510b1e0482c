// Package integration contains black-box tests for graceful shutdown.
package integration

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linecast/internal/server"
)

func TestGracefulShutdownWithoutClients(t *testing.T) {
	cfg := server.NewConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.HTTPAddr = ""
	srv := server.New(cfg)
	require.NoError(t, srv.Start())

	assert.NoError(t, srv.Shutdown(5*time.Second))
}

func TestGracefulShutdownClosesClients(t *testing.T) {
	cfg := server.NewConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.HTTPAddr = ""
	srv := server.New(cfg)
	require.NoError(t, srv.Start())

	addr := srv.Addr().String()
	clients := make([]net.Conn, 0, 5)
	for i := 0; i < 5; i++ {
		conn, err := net.Dial("tcp", addr)
		require.NoError(t, err)
		clients = append(clients, conn)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && srv.ClientCount() < 5 {
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, 5, srv.ClientCount())

	require.NoError(t, srv.Shutdown(5*time.Second))
	assert.Equal(t, 0, srv.ClientCount())

	// Every client observes the close.
	for _, conn := range clients {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		buf := make([]byte, 1)
		_, err := conn.Read(buf)
		assert.Error(t, err, "client connection should be closed by shutdown")
		_ = conn.Close()
	}

	// The listener is gone: new connections are refused.
	_, err := net.Dial("tcp", addr)
	assert.Error(t, err)
}

func TestStartFailsOnUnbindableAddress(t *testing.T) {
	occupier, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer occupier.Close()

	cfg := server.NewConfig()
	cfg.ListenAddr = occupier.Addr().String()
	cfg.HTTPAddr = ""

	srv := server.New(cfg)
	assert.Error(t, srv.Start(), "binding an occupied port must fail")
}
