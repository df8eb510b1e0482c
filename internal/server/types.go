// Package server defines shared message payload types and utility helpers that
// are reused across connection and broadcaster logic.
package server

import "strings"

// Message is one immutable text payload flowing through the inbound queue.
// Origin identifies the connection it arrived on; it is used for logging only
// and never included in the broadcast payload.
type Message struct {
	Origin *Conn
	Text   string
}

// Eviction causes, used as the metrics label and log field.
const (
	evictReadError  = "read_error"
	evictWriteError = "write_error"
	evictShutdown   = "shutdown"
)

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
